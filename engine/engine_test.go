package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/history"
	"github.com/hupe1980/agentfleet/registry"
	"github.com/stretchr/testify/assert"
)

// testAgent is a scriptable core.Agent covering the full lifecycle. runFn
// receives the agent so scripts can set results themselves.
type testAgent struct {
	id    string
	runFn func(a *testAgent, ctx context.Context) (bool, error)

	failProcess bool
	failReport  bool
	saveTable   bool
	saveReport  bool

	mu      sync.Mutex
	state   core.State
	lastRun time.Time
	lastErr string
	results any
}

func newTestAgent(id string, runFn func(a *testAgent, ctx context.Context) (bool, error)) *testAgent {
	if runFn == nil {
		runFn = func(a *testAgent, _ context.Context) (bool, error) {
			a.setResults([]string{"row"})
			return true, nil
		}
	}
	return &testAgent{id: id, runFn: runFn, saveTable: true, saveReport: true, state: core.StateReady}
}

func (a *testAgent) setResults(raw any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = raw
}

func (a *testAgent) ID() string { return a.id }

func (a *testAgent) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == core.StateRunning {
		return core.ErrAgentAlreadyRunning
	}
	a.state = core.StateRunning
	a.lastErr = ""
	return nil
}

func (a *testAgent) Finish(state core.State, lastError string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state
	a.lastErr = lastError
	a.lastRun = time.Now()
}

func (a *testAgent) Run(ctx context.Context) (bool, error) { return a.runFn(a, ctx) }

func (a *testAgent) Results() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.results
}

func (a *testAgent) ProcessData(any) (*core.Table, error) {
	if a.failProcess {
		return nil, errors.New("bad rows")
	}
	table := core.NewTable("col")
	_ = table.Append("v")
	return table, nil
}

func (a *testAgent) GenerateReport(*core.Table) (string, error) {
	if a.failReport {
		return "", errors.New("bad template")
	}
	return "# Report", nil
}

func (a *testAgent) SaveResults(*core.Table, string) (bool, bool) {
	return a.saveTable, a.saveReport
}

func (a *testAgent) Status() core.AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.AgentStatus{AgentID: a.id, State: a.state, LastRun: a.lastRun, LastError: a.lastErr}
}

func (a *testAgent) ArtifactPaths() (string, string) {
	return "out/" + a.id + ".csv", "out/" + a.id + ".md"
}

var (
	_ core.Agent            = (*testAgent)(nil)
	_ core.ArtifactReporter = (*testAgent)(nil)
)

// newTestEngine wires a registry, an in-memory store and an engine around the
// given agents, keyed by id.
func newTestEngine(t *testing.T, agents ...*testAgent) (*Engine, *history.InMemoryStore) {
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
	return New(reg, store), store
}

func TestEngine_Execute_Success(t *testing.T) {
	agent := newTestAgent("a1", nil)
	eng, store := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "a1", res.AgentID)
	assert.NotEmpty(t, res.ExecutionID)

	status := store.StatusFor("a1")
	assert.Equal(t, core.StateCompleted, status.State)
	assert.False(t, status.LastRun.IsZero())

	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "out/a1.csv", records[0].TablePath)
	assert.Equal(t, "out/a1.md", records[0].ReportPath)
}

func TestEngine_Execute_BusinessFailure(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, _ context.Context) (bool, error) {
		return false, nil
	})
	eng, store := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Empty(t, res.Error, "business failures carry no error message")
	assert.True(t, res.BusinessFailure())
	assert.Equal(t, core.StateError, store.StatusFor("a1").State)
}

func TestEngine_Execute_NilResultsIsBusinessFailure(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, _ context.Context) (bool, error) {
		return true, nil // claims success but leaves no results behind
	})
	eng, _ := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Empty(t, res.Error)
}

func TestEngine_Execute_SystemFailure(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, _ context.Context) (bool, error) {
		return false, errors.New("upstream unreachable")
	})
	eng, store := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Equal(t, "upstream unreachable", res.Error)
	assert.True(t, res.SystemFailure())

	status := store.StatusFor("a1")
	assert.Equal(t, core.StateError, status.State)
	assert.Equal(t, "upstream unreachable", status.LastError)
}

func TestEngine_Execute_PanicIsContained(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, _ context.Context) (bool, error) {
		panic("nil map write")
	})
	eng, _ := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "agent panic")
	assert.Contains(t, res.Error, "nil map write")
}

func TestEngine_Execute_ProcessDataFailure(t *testing.T) {
	agent := newTestAgent("a1", nil)
	agent.failProcess = true
	eng, _ := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "process data")
}

func TestEngine_Execute_PartialPersistenceStaysSuccessful(t *testing.T) {
	agent := newTestAgent("a1", nil)
	agent.saveReport = false
	eng, store := newTestEngine(t, agent)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.True(t, res.Success, "persistence trouble must not downgrade the run")

	records, err := store.HistoryFor("a1", 1)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "out/a1.csv", records[0].TablePath)
	assert.Empty(t, records[0].ReportPath, "only succeeded artifacts are referenced")
}

func TestEngine_Execute_Timeout(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, ctx context.Context) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(5 * time.Second):
			return true, nil
		}
	})
	eng, store := newTestEngine(t, agent)

	start := time.Now()
	res := eng.Execute(context.Background(), "a1", 50*time.Millisecond)

	assert.False(t, res.Success)
	assert.Equal(t, "timeout exceeded", res.Error)
	assert.Less(t, time.Since(start), time.Second, "caller must be released at the deadline")

	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, core.StateError, store.StatusFor("a1").State)
}

func TestEngine_Execute_CancelledContext(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	eng, _ := newTestEngine(t, agent)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	res := eng.Execute(ctx, "a1", time.Minute)

	assert.False(t, res.Success)
	assert.Equal(t, "execution canceled", res.Error)
}

func TestEngine_Execute_RejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	agent := newTestAgent("a1", func(a *testAgent, _ context.Context) (bool, error) {
		close(started)
		<-release
		a.setResults([]string{"row"})
		return true, nil
	})
	eng, store := newTestEngine(t, agent)

	var wg sync.WaitGroup
	wg.Add(1)
	var first core.ExecutionResult
	go func() {
		defer wg.Done()
		first = eng.Execute(context.Background(), "a1", time.Minute)
	}()

	<-started
	second := eng.Execute(context.Background(), "a1", time.Minute)
	close(release)
	wg.Wait()

	assert.True(t, first.Success)
	assert.False(t, second.Success)
	assert.Equal(t, core.ErrAgentAlreadyRunning.Error(), second.Error)

	// Both attempts, including the reject, are journaled.
	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestEngine_Execute_UnknownAgent(t *testing.T) {
	eng, store := newTestEngine(t)

	res := eng.Execute(context.Background(), "ghost", time.Second)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "ghost")

	// Unknown ids never resolved into a journal to write into.
	records, err := store.HistoryFor("ghost", 0)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestEngine_Execute_LoadFailureIsRecorded(t *testing.T) {
	reg := registry.New()
	reg.RegisterFactory("broken", func(core.AgentDescriptor) (core.Agent, error) {
		return nil, errors.New("missing credentials")
	})
	assert.NoError(t, reg.Add(core.AgentDescriptor{ID: "a1", Kind: "broken", Enabled: true}))

	store := history.NewInMemoryStore()
	eng := New(reg, store)

	res := eng.Execute(context.Background(), "a1", time.Second)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "missing credentials")

	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestEngine_Execute_DefaultTimeoutFallback(t *testing.T) {
	agent := newTestAgent("a1", func(a *testAgent, ctx context.Context) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(5 * time.Second):
			return true, nil
		}
	})

	reg := registry.New()
	reg.RegisterFactory("a1", func(core.AgentDescriptor) (core.Agent, error) { return agent, nil })
	assert.NoError(t, reg.Add(core.AgentDescriptor{ID: "a1", Enabled: true}))

	eng := New(reg, history.NewInMemoryStore(), WithDefaultTimeout(50*time.Millisecond))

	res := eng.Execute(context.Background(), "a1", 0)

	assert.False(t, res.Success)
	assert.Equal(t, "timeout exceeded", res.Error)
}
