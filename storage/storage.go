// Package storage persists agent artifacts: the tabular result as CSV and
// the narrative report as Markdown. It is the durable-storage collaborator
// behind the Agent contract's SaveResults; the core only depends on the two
// independent success signals.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/agentfleet/core"
)

// Writer persists the two artifacts of an agent run to named locations and
// returns where they landed.
type Writer interface {
	// WriteTable persists the tabular result under filename.
	WriteTable(filename string, table *core.Table) (path string, err error)

	// WriteReport persists the narrative report under filename.
	WriteReport(filename string, report string) (path string, err error)
}

// FileWriter writes artifacts into a single output directory, creating it on
// first use. CSV for tables, verbatim text for reports.
type FileWriter struct {
	dir string
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter constructs a writer rooted at dir.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string { return w.dir }

// WriteTable writes the table as a CSV file with a header row.
func (w *FileWriter) WriteTable(filename string, table *core.Table) (string, error) {
	if table == nil {
		return "", fmt.Errorf("storage: nil table")
	}

	path, f, err := w.create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(table.Columns); err != nil {
		return "", fmt.Errorf("storage: write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("storage: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("storage: flush: %w", err)
	}

	return path, nil
}

// WriteReport writes the report text, ensuring a trailing newline.
func (w *FileWriter) WriteReport(filename string, report string) (string, error) {
	path, f, err := w.create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if !strings.HasSuffix(report, "\n") {
		report += "\n"
	}
	if _, err := f.WriteString(report); err != nil {
		return "", fmt.Errorf("storage: write report: %w", err)
	}

	return path, nil
}

func (w *FileWriter) create(filename string) (string, *os.File, error) {
	if filename == "" {
		return "", nil, fmt.Errorf("storage: empty filename")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("storage: create output dir: %w", err)
	}

	path := filepath.Join(w.dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("storage: create %s: %w", path, err)
	}
	return path, f, nil
}
