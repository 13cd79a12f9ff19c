// Package sqlite provides a durable HistoryStore implementation backed by a
// sqlite database file. The execution journal survives restarts; status
// snapshots are persisted alongside it so dashboards see the last known
// state after a crash (a snapshot stuck in "running" degrades to the record
// the journal holds for it).
package sqlite

import (
	"database/sql"
	"time"

	"github.com/hupe1980/agentfleet/core"
	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed core.HistoryStore. database/sql serializes
// writers; readers run concurrently.
type Store struct {
	db  *sql.DB
	cap int
}

var _ core.HistoryStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	// Cap bounds the retained records per agent.
	Cap int
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an ephemeral store.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Cap: 100}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Cap <= 0 {
		opts.Cap = 100
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, cap: opts.Cap}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// WithCap overrides the per-agent retention cap.
func WithCap(n int) func(o *Options) {
	return func(o *Options) { o.Cap = n }
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		agent_id TEXT NOT NULL,
		success INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL,
		duration_ns INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMP NOT NULL,
		table_path TEXT NOT NULL DEFAULT '',
		report_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS statuses (
		agent_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		last_run TIMESTAMP,
		last_error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_executions_agent ON executions(agent_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record appends to the journal and trims the agent's oldest rows beyond
// the cap.
func (s *Store) Record(rec core.HistoryRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO executions (execution_id, agent_id, success, started_at, duration_ns, error, recorded_at, table_path, report_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ExecutionID, rec.AgentID, boolToInt(rec.Success), rec.StartedAt, int64(rec.Duration),
		rec.Error, rec.RecordedAt, rec.TablePath, rec.ReportPath,
	)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`DELETE FROM executions WHERE agent_id = ? AND id NOT IN (
			SELECT id FROM executions WHERE agent_id = ? ORDER BY id DESC LIMIT ?
		)`,
		rec.AgentID, rec.AgentID, s.cap,
	)
	return err
}

// HistoryFor returns up to limit records for agentID, most recent first.
func (s *Store) HistoryFor(agentID string, limit int) ([]core.HistoryRecord, error) {
	if limit <= 0 || limit > s.cap {
		limit = s.cap
	}

	rows, err := s.db.Query(
		`SELECT execution_id, agent_id, success, started_at, duration_ns, error, recorded_at, table_path, report_path
		 FROM executions WHERE agent_id = ? ORDER BY id DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.HistoryRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SetStatus upserts the agent's snapshot.
func (s *Store) SetStatus(status core.AgentStatus) error {
	var lastRun any
	if !status.LastRun.IsZero() {
		lastRun = status.LastRun
	}
	_, err := s.db.Exec(
		`INSERT INTO statuses (agent_id, state, last_run, last_error) VALUES (?, ?, ?, ?)
		 ON CONFLICT(agent_id) DO UPDATE SET state = excluded.state, last_run = excluded.last_run, last_error = excluded.last_error`,
		status.AgentID, status.State.String(), lastRun, status.LastError,
	)
	return err
}

// StatusFor returns the persisted snapshot, or a default StateReady snapshot
// for unknown ids. Read errors also degrade to the default so dashboards
// always render something.
func (s *Store) StatusFor(agentID string) core.AgentStatus {
	row := s.db.QueryRow(`SELECT state, last_run, last_error FROM statuses WHERE agent_id = ?`, agentID)

	var state, lastError string
	var lastRun sql.NullTime
	if err := row.Scan(&state, &lastRun, &lastError); err != nil {
		return core.AgentStatus{AgentID: agentID, State: core.StateReady}
	}

	status := core.AgentStatus{AgentID: agentID, State: core.ParseState(state), LastError: lastError}
	if lastRun.Valid {
		status.LastRun = lastRun.Time
	}
	return status
}

// StatusForAll returns snapshots for the given ids.
func (s *Store) StatusForAll(agentIDs []string) map[string]core.AgentStatus {
	out := make(map[string]core.AgentStatus, len(agentIDs))
	for _, id := range agentIDs {
		out[id] = s.StatusFor(id)
	}
	return out
}

// LatestArtifact returns the most recent record for agentID with persisted
// artifact paths, or nil when none exists.
func (s *Store) LatestArtifact(agentID string) (*core.HistoryRecord, error) {
	row := s.db.QueryRow(
		`SELECT execution_id, agent_id, success, started_at, duration_ns, error, recorded_at, table_path, report_path
		 FROM executions WHERE agent_id = ? AND (table_path != '' OR report_path != '')
		 ORDER BY id DESC LIMIT 1`,
		agentID,
	)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (core.HistoryRecord, error) {
	var rec core.HistoryRecord
	var success int
	var durationNS int64
	var startedAt, recordedAt time.Time

	err := sc.Scan(&rec.ExecutionID, &rec.AgentID, &success, &startedAt, &durationNS,
		&rec.Error, &recordedAt, &rec.TablePath, &rec.ReportPath)
	if err != nil {
		return core.HistoryRecord{}, err
	}

	rec.Success = success != 0
	rec.StartedAt = startedAt
	rec.Duration = time.Duration(durationNS)
	rec.RecordedAt = recordedAt
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
