package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/engine"
	"github.com/hupe1980/agentfleet/fleet"
	"github.com/hupe1980/agentfleet/history"
	"github.com/hupe1980/agentfleet/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAgent counts how often it ran.
type testAgent struct {
	id string

	mu      sync.Mutex
	state   core.State
	runs    int
	results any
}

func (a *testAgent) ID() string { return a.id }

func (a *testAgent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == core.StateRunning {
		return core.ErrAgentAlreadyRunning
	}
	a.state = core.StateRunning
	return nil
}

func (a *testAgent) Finish(state core.State, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
}

func (a *testAgent) Run(context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs++
	a.results = a.runs
	return true, nil
}

func (a *testAgent) Runs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runs
}

func (a *testAgent) Results() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.results
}

func (a *testAgent) ProcessData(any) (*core.Table, error) {
	table := core.NewTable("col")
	_ = table.Append("v")
	return table, nil
}

func (a *testAgent) GenerateReport(*core.Table) (string, error) { return "# Report", nil }

func (a *testAgent) SaveResults(*core.Table, string) (bool, bool) { return true, true }

func (a *testAgent) Status() core.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.AgentStatus{AgentID: a.id, State: a.state}
}

var _ core.Agent = (*testAgent)(nil)

func newTestScheduler(t *testing.T, agents ...*testAgent) (*Scheduler, *history.InMemoryStore) {
	t.Helper()

	reg := registry.New()
	for _, a := range agents {
		agent := a
		reg.RegisterFactory(agent.id, func(core.AgentDescriptor) (core.Agent, error) {
			return agent, nil
		})
		assert.NoError(t, reg.Add(core.AgentDescriptor{ID: agent.id, Enabled: true}))
	}

	store := history.NewInMemoryStore()
	eng := engine.New(reg, store)
	orch := fleet.New(eng, reg)
	return New(orch, WithTimeout(time.Second)), store
}

func TestScheduler_Register_SkipsUnscheduled(t *testing.T) {
	sched, _ := newTestScheduler(t)

	assert.NoError(t, sched.Register(context.Background(), core.AgentDescriptor{
		ID:      "on-demand",
		Enabled: true,
	}))
	assert.NoError(t, sched.Register(context.Background(), core.AgentDescriptor{
		ID:       "disabled",
		Schedule: "0 9 * * *",
		Enabled:  false,
	}))

	assert.Empty(t, sched.Entries())
}

func TestScheduler_Register_InvalidExpression(t *testing.T) {
	sched, _ := newTestScheduler(t)

	err := sched.Register(context.Background(), core.AgentDescriptor{
		ID:       "a1",
		Schedule: "not a cron line",
		Enabled:  true,
	})
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestScheduler_Register_Duplicate(t *testing.T) {
	sched, _ := newTestScheduler(t)

	desc := core.AgentDescriptor{ID: "a1", Schedule: "0 9 * * *", Enabled: true}
	assert.NoError(t, sched.Register(context.Background(), desc))
	assert.ErrorContains(t, sched.Register(context.Background(), desc), "already registered")
}

func TestScheduler_RegisterAll(t *testing.T) {
	sched, _ := newTestScheduler(t)

	descs := []core.AgentDescriptor{
		{ID: "a1", Schedule: "0 9 * * *", Enabled: true},
		{ID: "a2", Schedule: "@every 1h", Enabled: true},
		{ID: "a3", Enabled: true}, // on-demand only
	}

	assert.NoError(t, sched.RegisterAll(context.Background(), descs))
	assert.ElementsMatch(t, []string{"a1", "a2"}, sched.Entries())
}

func TestScheduler_NextRun(t *testing.T) {
	sched, _ := newTestScheduler(t)

	assert.NoError(t, sched.Register(context.Background(), core.AgentDescriptor{
		ID:       "a1",
		Schedule: "@every 1h",
		Enabled:  true,
	}))

	assert.True(t, sched.NextRun("ghost").IsZero())

	sched.Start()
	defer sched.Stop()

	next := sched.NextRun("a1")
	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_FiresAndJournals(t *testing.T) {
	agent := &testAgent{id: "a1", state: core.StateReady}
	sched, store := newTestScheduler(t, agent)

	require.NoError(t, sched.Register(context.Background(), core.AgentDescriptor{
		ID:       "a1",
		Schedule: "@every 50ms",
		Enabled:  true,
	}))

	sched.Start()
	time.Sleep(250 * time.Millisecond)
	sched.Stop()

	assert.Greater(t, agent.Runs(), 0, "the schedule should have fired at least once")

	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, records)
	assert.True(t, records[0].Success)
}
