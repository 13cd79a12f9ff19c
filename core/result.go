package core

import "time"

// ExecutionResult describes one timed attempt to run an agent's full
// lifecycle. It is immutable once produced; exactly one instance exists per
// run attempt, including immediate rejections.
type ExecutionResult struct {
	// ExecutionID uniquely identifies this attempt.
	ExecutionID string `json:"execution_id"`

	// AgentID is the agent the attempt targeted.
	AgentID string `json:"agent_id"`

	// Success reports whether the full lifecycle completed with usable
	// results.
	Success bool `json:"success"`

	// StartedAt is the wall-clock start of the attempt.
	StartedAt time.Time `json:"started_at"`

	// Duration is the measured wall-clock duration of the attempt.
	Duration time.Duration `json:"duration"`

	// Error carries the system-failure message. It is empty both on
	// success and on business failures (Run returned false without
	// faulting), keeping the two failure classes distinguishable.
	Error string `json:"error,omitempty"`
}

// SystemFailure reports whether the attempt failed due to a fault (timeout,
// panic, load error, contention) as opposed to a business failure.
func (r ExecutionResult) SystemFailure() bool {
	return !r.Success && r.Error != ""
}

// BusinessFailure reports whether the agent declined to produce results
// without faulting.
func (r ExecutionResult) BusinessFailure() bool {
	return !r.Success && r.Error == ""
}

// HistoryRecord is an immutable journal entry describing one past execution.
// Records are strictly insertion-ordered per agent and never mutated after
// creation.
type HistoryRecord struct {
	ExecutionResult

	// RecordedAt is when the record entered the journal.
	RecordedAt time.Time `json:"recorded_at"`

	// TablePath and ReportPath locate the persisted artifacts, when the
	// agent reported them. Empty when nothing was written.
	TablePath  string `json:"table_path,omitempty"`
	ReportPath string `json:"report_path,omitempty"`
}

// HasArtifacts reports whether the execution left at least one persisted
// artifact behind.
func (r HistoryRecord) HasArtifacts() bool {
	return r.TablePath != "" || r.ReportPath != ""
}
