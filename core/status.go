package core

import "time"

// State enumerates the lifecycle states of a single agent instance.
type State int

const (
	// StateReady means the agent has never run or is between runs.
	StateReady State = iota
	// StateRunning means a run is currently in flight.
	StateRunning
	// StateCompleted means the most recent run finished successfully.
	StateCompleted
	// StateError means the most recent run failed.
	StateError
)

// String returns the lowercase textual form used in logs and persistence.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseState converts the textual form back into a State. Unknown input
// yields StateReady so stale or foreign journal rows degrade to a harmless
// default instead of failing the read path.
func ParseState(s string) State {
	switch s {
	case "running":
		return StateRunning
	case "completed":
		return StateCompleted
	case "error":
		return StateError
	default:
		return StateReady
	}
}

// AgentStatus is the current, single-writer snapshot of one agent. It is
// derived state: the engine is the only writer, dashboards and the CLI are
// readers. A never-run agent yields a zero-valued snapshot in StateReady.
type AgentStatus struct {
	AgentID   string    `json:"agent_id"`
	State     State     `json:"state"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}
