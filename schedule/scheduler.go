package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/robfig/cron/v3"
)

// Options configures a Scheduler.
type Options struct {
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
	// Timeout is the per-execution deadline for scheduled runs.
	Timeout time.Duration
}

// Scheduler drives recurring agent runs. Standard five-field cron expressions
// and the @every / @daily descriptors are accepted.
type Scheduler struct {
	orchestrator *fleet.Orchestrator
	cron         *cron.Cron
	logger       logging.Logger
	timeout      time.Duration
	entries      map[string]cron.EntryID
}

// New constructs a Scheduler submitting runs to the given orchestrator.
func New(orch *fleet.Orchestrator, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Scheduler{
		orchestrator: orch,
		cron:         cron.New(),
		logger:       opts.Logger,
		timeout:      opts.Timeout,
		entries:      make(map[string]cron.EntryID),
	}
}

// WithLogger overrides the scheduler logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithTimeout sets the per-execution deadline for scheduled runs. Zero defers
// to the engine default.
func WithTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.Timeout = d }
}

// Register adds a cron entry for the descriptor. Descriptors without a
// schedule or disabled agents are skipped without error.
func (s *Scheduler) Register(ctx context.Context, desc core.AgentDescriptor) error {
	if desc.Schedule == "" || !desc.Enabled {
		return nil
	}
	if _, exists := s.entries[desc.ID]; exists {
		return fmt.Errorf("schedule: agent %q already registered", desc.ID)
	}

	agentID := desc.ID
	entryID, err := s.cron.AddFunc(desc.Schedule, func() {
		s.logger.Info("scheduled run firing", "agent_id", agentID)
		res := s.orchestrator.RunOne(ctx, agentID, s.timeout)
		if !res.Success {
			s.logger.Warn("scheduled run failed", "agent_id", agentID, "execution_id", res.ExecutionID, "error", res.Error)
			return
		}
		s.logger.Info("scheduled run completed", "agent_id", agentID, "execution_id", res.ExecutionID, "duration", res.Duration)
	})
	if err != nil {
		return fmt.Errorf("schedule: invalid schedule %q for agent %q: %w", desc.Schedule, desc.ID, err)
	}

	s.entries[agentID] = entryID
	s.logger.Info("schedule registered", "agent_id", agentID, "schedule", desc.Schedule)

	return nil
}

// RegisterAll registers every schedulable descriptor, failing fast on the
// first invalid expression.
func (s *Scheduler) RegisterAll(ctx context.Context, descs []core.AgentDescriptor) error {
	for _, desc := range descs {
		if err := s.Register(ctx, desc); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns the agent ids with an active cron entry.
func (s *Scheduler) Entries() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// NextRun reports when the agent's entry fires next. The zero time means the
// agent has no entry or the scheduler is stopped.
func (s *Scheduler) NextRun(agentID string) time.Time {
	entryID, ok := s.entries[agentID]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}

// Start begins firing schedules in a background goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.entries))
}

// Stop halts scheduling and waits for in-flight scheduled runs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
