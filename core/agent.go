package core

import "context"

// Agent defines the capability set every pluggable agent in AgentFleet must
// expose, independent of its internal business logic.
//
// The lifecycle driven by the execution engine is:
//
//	Start -> Run -> ProcessData -> GenerateReport -> SaveResults -> Finish
//
// Implementations must:
//   - Keep ProcessData and GenerateReport pure (no I/O, deterministic)
//   - Make Status safe to call while Run is in flight
//   - Never assume Run's context is honored by callers other than the engine
type Agent interface {
	// ID returns the stable identifier the agent is registered under.
	ID() string

	// Start transitions the agent into StateRunning. It returns
	// ErrAgentAlreadyRunning if a run is already in flight; a second
	// execution request is rejected, never queued.
	Start() error

	// Finish records the terminal state of the current run together with
	// the last error message (empty when none).
	Finish(state State, lastError string)

	// Run performs the agent's primary task and stores the raw results on
	// the instance. The boolean reports whether usable results were
	// produced: false with a nil error is a business failure, while a
	// non-nil error is a system fault. Run may take arbitrarily long; the
	// deadline is enforced by the caller through ctx.
	Run(ctx context.Context) (bool, error)

	// Results returns the raw results populated by the most recent Run.
	Results() any

	// ProcessData transforms raw results into a tabular structure.
	ProcessData(raw any) (*Table, error)

	// GenerateReport renders a human-readable narrative from the table.
	GenerateReport(table *Table) (string, error)

	// SaveResults persists the table and the report, returning independent
	// success flags because one artifact can fail while the other succeeds.
	SaveResults(table *Table, report string) (tableOK, reportOK bool)

	// Status returns the agent's current snapshot.
	Status() AgentStatus
}

// ArtifactReporter is an optional capability for agents whose SaveResults
// writes to named locations. The engine records the reported paths on the
// execution's history record so the most recent artifact can be queried per
// agent without filesystem pointers.
type ArtifactReporter interface {
	// ArtifactPaths returns the locations of the last written table and
	// report artifacts. Empty strings indicate nothing was written.
	ArtifactPaths() (tablePath, reportPath string)
}

// Factory constructs an Agent instance from its descriptor. Factories are
// registered once at process initialization under the descriptor's Kind,
// replacing reflection-based module loading with an explicit table.
type Factory func(desc AgentDescriptor) (Agent, error)

// Registry resolves stable agent identifiers into live instances and
// enumerates the configured fleet.
type Registry interface {
	// IDs returns all configured agent identifiers.
	IDs() []string

	// EnabledIDs returns the identifiers of agents not disabled in
	// configuration; this is the "run all" batch.
	EnabledIDs() []string

	// Descriptor returns the stored descriptor for an identifier.
	Descriptor(agentID string) (AgentDescriptor, bool)

	// Resolve returns the cached instance for agentID, constructing it on
	// first use. Calling Resolve twice with the same id returns the same
	// instance. It fails with ErrAgentNotFound for unknown identifiers and
	// with a *LoadError when construction fails; load errors are not
	// retried until the registration changes.
	Resolve(agentID string) (Agent, error)
}
