package agentfleet

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/agentfleet/config"
	"github.com/hupe1980/agentfleet/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFleet(t *testing.T) *Fleet {
	t.Helper()

	f := New(WithOutputDir(t.TempDir()))
	f.RegisterBuiltins()
	require.NoError(t, f.AddAgents(config.Default().Descriptors()))
	return f
}

func TestFleet_RunAgent(t *testing.T) {
	f := newTestFleet(t)

	res := f.RunAgent(context.Background(), "finance", 10*time.Second)

	assert.True(t, res.Success)
	assert.Equal(t, "finance", res.AgentID)
	assert.Empty(t, res.Error)

	status := f.Status("finance")
	assert.Equal(t, core.StateCompleted, status.State)
	assert.False(t, status.LastRun.IsZero())
}

func TestFleet_RunAll(t *testing.T) {
	f := newTestFleet(t)
	require.NoError(t, f.SetEnabled("strategy", false))

	results := f.RunAll(context.Background(), true, 10*time.Second)

	assert.Len(t, results, 3, "disabled agents are excluded from run-all")
	for _, res := range results {
		assert.True(t, res.Success, "agent %s failed: %s", res.AgentID, res.Error)
	}

	assert.Equal(t, core.StateReady, f.Status("strategy").State)
}

func TestFleet_HistoryAndArtifacts(t *testing.T) {
	f := newTestFleet(t)

	res := f.RunAgent(context.Background(), "linkedin", 10*time.Second)
	require.True(t, res.Success)

	records, err := f.History("linkedin", 5)
	assert.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, res.ExecutionID, records[0].ExecutionID)
	assert.True(t, records[0].HasArtifacts())

	latest, err := f.LatestArtifact("linkedin")
	assert.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, res.ExecutionID, latest.ExecutionID)
	assert.NotEmpty(t, latest.TablePath)
	assert.NotEmpty(t, latest.ReportPath)
}

func TestFleet_StatusAll(t *testing.T) {
	f := newTestFleet(t)

	statuses := f.StatusAll()
	assert.Len(t, statuses, 4)
	for id, status := range statuses {
		assert.Equal(t, id, status.AgentID)
		assert.Equal(t, core.StateReady, status.State)
	}
}

func TestFleet_UnknownAgent(t *testing.T) {
	f := newTestFleet(t)

	res := f.RunAgent(context.Background(), "ghost", time.Second)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	records, err := f.History("ghost", 0)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestFleet_CustomFactory(t *testing.T) {
	f := New(WithOutputDir(t.TempDir()))

	f.RegisterFactory("echo", func(desc core.AgentDescriptor) (core.Agent, error) {
		return newEchoAgent(desc.ID), nil
	})
	require.NoError(t, f.AddAgent(core.AgentDescriptor{ID: "echo-1", Kind: "echo", Enabled: true}))

	res := f.RunAgent(context.Background(), "echo-1", time.Second)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"echo-1"}, f.AgentIDs())
}

func TestFleet_Scheduler(t *testing.T) {
	f := newTestFleet(t)

	sched, err := f.Scheduler(context.Background(), time.Second)
	assert.NoError(t, err)
	assert.Len(t, sched.Entries(), 4, "every default agent carries a schedule")
}

// echoAgent is the smallest possible custom agent.
type echoAgent struct {
	id      string
	state   core.State
	results any
}

func newEchoAgent(id string) *echoAgent { return &echoAgent{id: id, state: core.StateReady} }

func (a *echoAgent) ID() string { return a.id }

func (a *echoAgent) Start() error {
	if a.state == core.StateRunning {
		return core.ErrAgentAlreadyRunning
	}
	a.state = core.StateRunning
	return nil
}

func (a *echoAgent) Finish(state core.State, _ string) { a.state = state }

func (a *echoAgent) Run(context.Context) (bool, error) {
	a.results = a.id
	return true, nil
}

func (a *echoAgent) Results() any { return a.results }

func (a *echoAgent) ProcessData(any) (*core.Table, error) {
	table := core.NewTable("id")
	_ = table.Append(a.id)
	return table, nil
}

func (a *echoAgent) GenerateReport(*core.Table) (string, error) { return "# " + a.id, nil }

func (a *echoAgent) SaveResults(*core.Table, string) (bool, bool) { return true, true }

func (a *echoAgent) Status() core.AgentStatus {
	return core.AgentStatus{AgentID: a.id, State: a.state}
}
