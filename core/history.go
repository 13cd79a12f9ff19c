package core

// HistoryStore owns the bounded execution journal and the current status
// snapshot per agent. Implementations must support concurrent readers and
// serialized writers, and must not require cross-agent lock contention:
// parallel batches touching different agent ids append independently.
type HistoryStore interface {
	// Record appends to the agent's journal, evicting the oldest entries
	// once the configured cap is exceeded (FIFO on insertion order).
	Record(rec HistoryRecord) error

	// HistoryFor returns up to limit records for agentID, most recent
	// first. A non-positive limit means all retained records. Unknown or
	// never-run ids yield an empty slice, not an error.
	HistoryFor(agentID string, limit int) ([]HistoryRecord, error)

	// SetStatus replaces the agent's current status snapshot.
	SetStatus(status AgentStatus) error

	// StatusFor always returns a snapshot; a never-seen id yields a
	// default StateReady snapshot so callers can render "not yet run"
	// uniformly.
	StatusFor(agentID string) AgentStatus

	// StatusForAll returns snapshots for the given ids. Best-effort: an id
	// whose status cannot be computed is omitted rather than failing the
	// whole call.
	StatusForAll(agentIDs []string) map[string]AgentStatus

	// LatestArtifact returns the most recent record for agentID that left
	// persisted artifacts behind, or nil when none exists.
	LatestArtifact(agentID string) (*HistoryRecord, error)
}
