package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/engine"
	"github.com/hupe1980/agentfleet/logging"
)

// Options configures an Orchestrator.
type Options struct {
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// Orchestrator runs sets of agents through the execution engine. It holds no
// mutable state of its own; all methods are safe for concurrent use.
type Orchestrator struct {
	engine   *engine.Engine
	registry core.Registry
	logger   logging.Logger
}

// New constructs an Orchestrator over the given engine and registry.
func New(eng *engine.Engine, reg core.Registry, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{engine: eng, registry: reg, logger: opts.Logger}
}

// WithLogger overrides the orchestrator logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// RunOne executes a single agent, delegating directly to the engine.
func (o *Orchestrator) RunOne(ctx context.Context, agentID string, timeout time.Duration) core.ExecutionResult {
	return o.engine.Execute(ctx, agentID, timeout)
}

// RunMany executes the given agents either strictly in input order
// (parallel=false, each run completing before the next starts) or all at
// once (parallel=true, bounded only by host concurrency). The returned slice
// always has the same length and ordering as agentIDs.
//
// A failure in one agent never aborts the others. Duplicate ids are each
// executed independently; in the same parallel batch the second to reach the
// agent's contention check is rejected as already running — accepted,
// documented behavior.
func (o *Orchestrator) RunMany(ctx context.Context, agentIDs []string, parallel bool, timeout time.Duration) []core.ExecutionResult {
	if len(agentIDs) == 0 {
		return []core.ExecutionResult{}
	}

	o.logger.Info("fleet run started", "agents", len(agentIDs), "parallel", parallel)

	results := make([]core.ExecutionResult, len(agentIDs))

	if !parallel {
		for i, id := range agentIDs {
			results[i] = o.engine.Execute(ctx, id, timeout)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, id := range agentIDs {
		wg.Add(1)
		go func(idx int, agentID string) {
			defer wg.Done()
			// Index-addressed writes keep the output positional no matter
			// which execution finishes first.
			results[idx] = o.engine.Execute(ctx, agentID, timeout)
		}(i, id)
	}
	wg.Wait()

	return results
}

// RunAll executes every enabled agent in the registry.
func (o *Orchestrator) RunAll(ctx context.Context, parallel bool, timeout time.Duration) []core.ExecutionResult {
	return o.RunMany(ctx, o.registry.EnabledIDs(), parallel, timeout)
}
