package core

// AgentDescriptor is the configuration-time identity of an agent. Descriptors
// are created when the registry is populated and are immutable afterwards,
// except for Enabled which operators may toggle between runs.
type AgentDescriptor struct {
	// ID is the unique, stable key the agent is addressed by.
	ID string `json:"id"`

	// DisplayName is the human-facing name shown on dashboards and reports.
	DisplayName string `json:"display_name"`

	// Kind selects the registered Factory that constructs the
	// implementation. It defaults to ID when left empty, preserving the
	// id-to-implementation naming convention.
	Kind string `json:"kind"`

	// Schedule is an optional cron expression (or @every duration) for
	// recurring execution. Empty means on-demand only.
	Schedule string `json:"schedule,omitempty"`

	// Config carries arbitrary agent-specific settings. The core passes it
	// opaquely to the factory without validating its shape.
	Config map[string]any `json:"config,omitempty"`

	// Enabled excludes the agent from "run all" batches when false. The
	// agent remains individually addressable.
	Enabled bool `json:"enabled"`
}

// FactoryKind returns the factory key the descriptor resolves through,
// falling back to the agent id when no explicit kind is configured.
func (d AgentDescriptor) FactoryKind() string {
	if d.Kind != "" {
		return d.Kind
	}
	return d.ID
}
