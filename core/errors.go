package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAgentNotFound is returned when an identifier is not registered.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentAlreadyRunning is returned when an execution request targets
	// an agent whose previous run is still in flight.
	ErrAgentAlreadyRunning = errors.New("agent already running")

	// ErrTimeout marks an execution abandoned at its deadline. Execution
	// results carry its message in their Error field.
	ErrTimeout = errors.New("timeout exceeded")
)

// LoadError is returned when a registered identifier resolves to an
// implementation that cannot be constructed: the factory for its kind is
// missing or the factory itself failed. Load errors are cached and not
// retried until the registration changes.
type LoadError struct {
	AgentID string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("agent %s: load failed: %v", e.AgentID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *LoadError) Unwrap() error { return e.Err }
