package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/logging"
)

// DefaultTimeout bounds executions when the caller passes no explicit
// deadline. One hour mirrors the upper bound a long-running scrape or
// analysis agent is expected to stay under.
const DefaultTimeout = time.Hour

// Options configures an Engine instance.
type Options struct {
	// DefaultTimeout is applied when Execute is called with a
	// non-positive timeout.
	DefaultTimeout time.Duration

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// Engine executes single agents under a deadline. It does not own state: it
// borrows instances from the registry, mutates their status under the
// at-most-one-concurrent-run invariant, and appends to the history store.
// All methods are safe for concurrent use.
type Engine struct {
	registry       core.Registry
	store          core.HistoryStore
	logger         logging.Logger
	defaultTimeout time.Duration
}

// New constructs an Engine backed by the given registry and history store.
func New(reg core.Registry, store core.HistoryStore, optFns ...func(o *Options)) *Engine {
	opts := Options{
		DefaultTimeout: DefaultTimeout,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultTimeout
	}

	return &Engine{
		registry:       reg,
		store:          store,
		logger:         opts.Logger,
		defaultTimeout: opts.DefaultTimeout,
	}
}

// WithLogger overrides the engine logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithDefaultTimeout overrides the fallback execution deadline.
func WithDefaultTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.DefaultTimeout = d }
}

// runOutcome carries the primary task's result across the fan-in select.
type runOutcome struct {
	ok  bool
	err error
}

// Execute runs the full lifecycle of one agent under the given timeout and
// returns the attempt's result. A non-positive timeout falls back to the
// engine default.
//
// Exactly one history record is appended per call. An unknown agent id is
// the single exception: it never resolved into a descriptor, so there is no
// journal to write into.
//
// When the deadline elapses the run goroutine is abandoned with its context
// cancelled; a later execution of the same agent id may overlap the
// abandoned work.
func (e *Engine) Execute(ctx context.Context, agentID string, timeout time.Duration) core.ExecutionResult {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	res := core.ExecutionResult{
		ExecutionID: uuid.NewString(),
		AgentID:     agentID,
		StartedAt:   time.Now(),
	}

	inst, err := e.registry.Resolve(agentID)
	if err != nil {
		res.Duration = time.Since(res.StartedAt)
		res.Error = err.Error()

		if errors.Is(err, core.ErrAgentNotFound) {
			e.logger.Warn("agent not registered", "agent_id", agentID)
			return res
		}

		// The id is known but its implementation would not load; that is
		// journal-worthy configuration breakage.
		e.logger.Error("agent failed to load", "agent_id", agentID, "error", err)
		e.record(res, "", "")
		return res
	}

	if err := inst.Start(); err != nil {
		res.Duration = time.Since(res.StartedAt)
		res.Error = core.ErrAgentAlreadyRunning.Error()
		e.logger.Warn("agent execution rejected", "agent_id", agentID, "execution_id", res.ExecutionID)
		e.record(res, "", "")
		return res
	}

	e.setStatus(inst.Status())
	e.logger.Info("agent execution started", "agent_id", agentID, "execution_id", res.ExecutionID, "timeout", timeout)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- runOutcome{err: fmt.Errorf("agent panic: %v", p)}
			}
		}()
		ok, runErr := inst.Run(runCtx)
		done <- runOutcome{ok: ok, err: runErr}
	}()

	var tablePath, reportPath string

	select {
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			res.Error = core.ErrTimeout.Error()
			e.logger.Error("agent execution timed out", "agent_id", agentID, "execution_id", res.ExecutionID, "timeout", timeout)
		} else {
			res.Error = "execution canceled"
			e.logger.Warn("agent execution canceled", "agent_id", agentID, "execution_id", res.ExecutionID)
		}

	case out := <-done:
		switch {
		case out.err != nil:
			res.Error = out.err.Error()
		case !out.ok:
			// Business failure: the agent declined without faulting.
			// Success stays false and Error stays empty.
		default:
			var produced bool
			tablePath, reportPath, produced, err = e.finishLifecycle(inst)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Success = produced
			}
		}
	}

	res.Duration = time.Since(res.StartedAt)

	if res.Success {
		inst.Finish(core.StateCompleted, "")
	} else {
		inst.Finish(core.StateError, res.Error)
	}
	e.setStatus(inst.Status())

	e.record(res, tablePath, reportPath)
	e.logger.Info("agent execution finished",
		"agent_id", agentID,
		"execution_id", res.ExecutionID,
		"success", res.Success,
		"duration", res.Duration,
		"error", res.Error,
	)

	return res
}

// finishLifecycle drives the post-run stages: transform, render, persist.
// Faults (including panics) inside agent code are converted into errors. A
// partial persistence failure is logged but does not fail the run, because
// the in-memory report was still produced correctly.
func (e *Engine) finishLifecycle(inst core.Agent) (tablePath, reportPath string, produced bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("agent panic: %v", p)
		}
	}()

	raw := inst.Results()
	if raw == nil {
		// Run reported success but left nothing behind; treat it like a
		// declined run rather than a fault.
		return "", "", false, nil
	}

	table, err := inst.ProcessData(raw)
	if err != nil {
		return "", "", false, fmt.Errorf("process data: %w", err)
	}

	report, err := inst.GenerateReport(table)
	if err != nil {
		return "", "", false, fmt.Errorf("generate report: %w", err)
	}

	tableOK, reportOK := inst.SaveResults(table, report)
	if !tableOK || !reportOK {
		e.logger.Warn("partial persistence failure",
			"agent_id", inst.ID(),
			"table_saved", tableOK,
			"report_saved", reportOK,
		)
	}

	if ar, ok := inst.(core.ArtifactReporter); ok {
		tp, rp := ar.ArtifactPaths()
		if tableOK {
			tablePath = tp
		}
		if reportOK {
			reportPath = rp
		}
	}

	return tablePath, reportPath, true, nil
}

// record appends the journal entry for this attempt. Store faults indicate a
// system-level defect and are allowed to propagate as panics would; they are
// not converted into per-agent results.
func (e *Engine) record(res core.ExecutionResult, tablePath, reportPath string) {
	rec := core.HistoryRecord{
		ExecutionResult: res,
		RecordedAt:      time.Now(),
		TablePath:       tablePath,
		ReportPath:      reportPath,
	}
	if err := e.store.Record(rec); err != nil {
		e.logger.Error("failed to record execution", "agent_id", res.AgentID, "execution_id", res.ExecutionID, "error", err)
	}
}

func (e *Engine) setStatus(status core.AgentStatus) {
	if err := e.store.SetStatus(status); err != nil {
		e.logger.Error("failed to update status", "agent_id", status.AgentID, "error", err)
	}
}
