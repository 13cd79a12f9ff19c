package agents

import (
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/storage"
)

// BaseAgent bundles the state and plumbing every agent shares: identity,
// configuration, the mutex-guarded status fields behind the
// at-most-one-concurrent-run invariant, the raw results slot, and a default
// SaveResults backed by a storage writer. Embed it in concrete agents and
// implement Run, ProcessData and GenerateReport to satisfy core.Agent.
//
// All exported methods are goroutine-safe: Status may be called while Run is
// in flight, and an abandoned run writing its results races only against the
// internal lock, never against callers.
type BaseAgent struct {
	desc   core.AgentDescriptor
	writer storage.Writer
	logger logging.Logger

	mu         sync.Mutex
	state      core.State
	lastRun    time.Time
	lastError  string
	results    any
	tablePath  string
	reportPath string
}

// NewBaseAgent constructs the shared plumbing from a descriptor. A nil
// writer disables persistence (SaveResults reports failure for both
// artifacts); a nil logger is replaced with a NoOp.
func NewBaseAgent(desc core.AgentDescriptor, writer storage.Writer, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseAgent{desc: desc, writer: writer, logger: logger, state: core.StateReady}
}

// ID returns the stable identifier the agent is registered under.
func (b *BaseAgent) ID() string { return b.desc.ID }

// DisplayName returns the human-facing name, falling back to the id.
func (b *BaseAgent) DisplayName() string {
	if b.desc.DisplayName != "" {
		return b.desc.DisplayName
	}
	return b.desc.ID
}

// Descriptor returns the configuration the agent was constructed with.
func (b *BaseAgent) Descriptor() core.AgentDescriptor { return b.desc }

// ConfigString reads a string setting from the descriptor config, returning
// def when absent or not a string.
func (b *BaseAgent) ConfigString(key, def string) string {
	if v, ok := b.desc.Config[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Logger returns the agent's logger.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// Start transitions the agent into StateRunning, rejecting re-entrant
// execution of the same instance.
func (b *BaseAgent) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == core.StateRunning {
		return core.ErrAgentAlreadyRunning
	}
	b.state = core.StateRunning
	b.lastError = ""
	return nil
}

// Finish records the terminal state of the current run.
func (b *BaseAgent) Finish(state core.State, lastError string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = state
	b.lastError = lastError
	b.lastRun = time.Now()
}

// SetResults stores the raw results produced by Run.
func (b *BaseAgent) SetResults(raw any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = raw
}

// Results returns the raw results from the most recent Run.
func (b *BaseAgent) Results() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Status returns the agent's current snapshot.
func (b *BaseAgent) Status() core.AgentStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	return core.AgentStatus{
		AgentID:   b.desc.ID,
		State:     b.state,
		LastRun:   b.lastRun,
		LastError: b.lastError,
	}
}

// SaveResults persists the table as CSV and the report as Markdown through
// the configured writer, returning independent success flags. Output file
// names come from the descriptor config keys "csv_file" and "markdown_file",
// defaulting to "<id>.csv" and "<id>.md".
func (b *BaseAgent) SaveResults(table *core.Table, report string) (bool, bool) {
	if b.writer == nil {
		return false, false
	}

	tableOK, reportOK := false, false

	tablePath, err := b.writer.WriteTable(b.ConfigString("csv_file", b.desc.ID+".csv"), table)
	if err != nil {
		b.logger.Error("failed to save table", "agent_id", b.desc.ID, "error", err)
	} else {
		tableOK = true
	}

	reportPath, err := b.writer.WriteReport(b.ConfigString("markdown_file", b.desc.ID+".md"), report)
	if err != nil {
		b.logger.Error("failed to save report", "agent_id", b.desc.ID, "error", err)
	} else {
		reportOK = true
	}

	b.mu.Lock()
	b.tablePath = tablePath
	b.reportPath = reportPath
	b.mu.Unlock()

	return tableOK, reportOK
}

// ArtifactPaths implements core.ArtifactReporter.
func (b *BaseAgent) ArtifactPaths() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tablePath, b.reportPath
}
