// Package agentfleet provides a high-level façade over the registry, engine
// and orchestrator for running a fleet of personal automation agents. Most
// applications interact with this package by:
//  1. Creating a Fleet via New() (optionally overriding stores, writer, logger)
//  2. Registering agent factories and descriptors (or the built-in fleet)
//  3. Running agents on demand (RunAgent, RunAll) or on schedule (Scheduler)
//
// The façade delegates execution to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local use; durable
// deployments typically supply the sqlite history store and a structured
// logger.
package agentfleet

import (
	"context"
	"time"

	"github.com/hupe1980/agentfleet/agents"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/engine"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/history"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/registry"
	"github.com/hupe1980/agentfleet/schedule"
	"github.com/hupe1980/agentfleet/storage"
)

// Options configures the Fleet instance.
type Options struct {
	// HistoryStore journals executions and statuses. Defaults to the
	// in-memory store with HistoryCap retained records per agent.
	HistoryStore core.HistoryStore

	// HistoryCap bounds per-agent retention when the default in-memory
	// store is used. Ignored when HistoryStore is set.
	HistoryCap int

	// Writer persists tables and reports. Defaults to a FileWriter rooted
	// at OutputDir.
	Writer storage.Writer

	// OutputDir is the artifact directory for the default writer.
	OutputDir string

	// Generator drafts narratives for agents that use a model. Nil keeps
	// those agents on their canned summaries.
	Generator model.Generator

	// DefaultTimeout bounds executions started without an explicit
	// deadline.
	DefaultTimeout time.Duration

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Fleet is the high-level façade aggregating registry, engine, orchestrator
// and history.
type Fleet struct {
	registry     *registry.Registry
	engine       *engine.Engine
	orchestrator *fleet.Orchestrator
	store        core.HistoryStore
	writer       storage.Writer
	generator    model.Generator
	logger       logging.Logger
}

// New creates a Fleet with optional overrides. Any unset service is
// initialized with a local default.
func New(optFns ...func(o *Options)) *Fleet {
	opts := Options{
		HistoryCap:     history.DefaultCap,
		OutputDir:      "./out",
		DefaultTimeout: engine.DefaultTimeout,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HistoryStore == nil {
		opts.HistoryStore = history.NewInMemoryStore(history.WithCap(opts.HistoryCap))
	}
	if opts.Writer == nil {
		opts.Writer = storage.NewFileWriter(opts.OutputDir)
	}

	reg := registry.New()
	eng := engine.New(reg, opts.HistoryStore,
		engine.WithLogger(opts.Logger),
		engine.WithDefaultTimeout(opts.DefaultTimeout),
	)
	orch := fleet.New(eng, reg, fleet.WithLogger(opts.Logger))

	return &Fleet{
		registry:     reg,
		engine:       eng,
		orchestrator: orch,
		store:        opts.HistoryStore,
		writer:       opts.Writer,
		generator:    opts.Generator,
		logger:       opts.Logger,
	}
}

// WithHistoryStore replaces the default in-memory history store.
func WithHistoryStore(s core.HistoryStore) func(o *Options) {
	return func(o *Options) { o.HistoryStore = s }
}

// WithHistoryCap bounds per-agent retention for the default store.
func WithHistoryCap(n int) func(o *Options) {
	return func(o *Options) { o.HistoryCap = n }
}

// WithWriter replaces the default artifact writer.
func WithWriter(w storage.Writer) func(o *Options) {
	return func(o *Options) { o.Writer = w }
}

// WithOutputDir sets the artifact directory for the default writer.
func WithOutputDir(dir string) func(o *Options) {
	return func(o *Options) { o.OutputDir = dir }
}

// WithGenerator supplies the narrative model used by model-backed agents.
func WithGenerator(g model.Generator) func(o *Options) {
	return func(o *Options) { o.Generator = g }
}

// WithDefaultTimeout sets the fallback execution deadline.
func WithDefaultTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.DefaultTimeout = d }
}

// WithLogger sets the structured logger shared by all components.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// RegisterFactory installs a custom agent factory under the given kind.
func (f *Fleet) RegisterFactory(kind string, factory core.Factory) {
	f.registry.RegisterFactory(kind, factory)
}

// RegisterBuiltins installs the built-in agent factories (linkedin, finance,
// strategy, selfimprove).
func (f *Fleet) RegisterBuiltins() {
	agents.RegisterBuiltins(f.registry, f.writer, f.logger, f.generator)
}

// AddAgent registers a descriptor. The matching factory must already be
// installed when the agent is first resolved.
func (f *Fleet) AddAgent(desc core.AgentDescriptor) error {
	return f.registry.Add(desc)
}

// AddAgents registers descriptors in order, failing fast on the first error.
func (f *Fleet) AddAgents(descs []core.AgentDescriptor) error {
	for _, desc := range descs {
		if err := f.registry.Add(desc); err != nil {
			return err
		}
	}
	return nil
}

// SetEnabled flips an agent's participation in RunAll and scheduling.
func (f *Fleet) SetEnabled(agentID string, enabled bool) error {
	return f.registry.SetEnabled(agentID, enabled)
}

// AgentIDs lists all registered agent ids, sorted.
func (f *Fleet) AgentIDs() []string { return f.registry.IDs() }

// RunAgent executes one agent under the given timeout. A non-positive timeout
// falls back to the fleet default.
func (f *Fleet) RunAgent(ctx context.Context, agentID string, timeout time.Duration) core.ExecutionResult {
	return f.orchestrator.RunOne(ctx, agentID, timeout)
}

// RunMany executes the given agents, sequentially or in parallel. Results are
// positional with respect to agentIDs.
func (f *Fleet) RunMany(ctx context.Context, agentIDs []string, parallel bool, timeout time.Duration) []core.ExecutionResult {
	return f.orchestrator.RunMany(ctx, agentIDs, parallel, timeout)
}

// RunAll executes every enabled agent.
func (f *Fleet) RunAll(ctx context.Context, parallel bool, timeout time.Duration) []core.ExecutionResult {
	return f.orchestrator.RunAll(ctx, parallel, timeout)
}

// Status reports the live status of one agent. Unknown or never-run agents
// report the ready state.
func (f *Fleet) Status(agentID string) core.AgentStatus {
	return f.store.StatusFor(agentID)
}

// StatusAll reports the status of every registered agent keyed by id.
func (f *Fleet) StatusAll() map[string]core.AgentStatus {
	return f.store.StatusForAll(f.registry.IDs())
}

// History returns the newest-first execution records for an agent, at most
// limit entries (non-positive means all retained).
func (f *Fleet) History(agentID string, limit int) ([]core.HistoryRecord, error) {
	return f.store.HistoryFor(agentID, limit)
}

// LatestArtifact returns the most recent record that persisted artifacts, or
// nil when the agent has none.
func (f *Fleet) LatestArtifact(agentID string) (*core.HistoryRecord, error) {
	return f.store.LatestArtifact(agentID)
}

// Scheduler builds a scheduler over this fleet with entries for every
// enabled, scheduled agent. Callers own Start/Stop.
func (f *Fleet) Scheduler(ctx context.Context, timeout time.Duration) (*schedule.Scheduler, error) {
	sched := schedule.New(f.orchestrator,
		schedule.WithLogger(f.logger),
		schedule.WithTimeout(timeout),
	)

	for _, id := range f.registry.EnabledIDs() {
		desc, ok := f.registry.Descriptor(id)
		if !ok {
			continue
		}
		if err := sched.Register(ctx, desc); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
