package core

import "fmt"

// Table is the tabular result structure every agent produces: a fixed set of
// named columns and row-major string cells. It deliberately avoids typed
// columns; agents format their own values and the storage writer persists
// them verbatim.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row. It returns an error when the cell count does not
// match the column count, so malformed rows surface at the producer instead
// of at persistence time.
func (t *Table) Append(cells ...string) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("table: row has %d cells, want %d", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }
