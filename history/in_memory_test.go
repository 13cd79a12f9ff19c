package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentfleet/core"
	"github.com/stretchr/testify/assert"
)

func record(agentID string, n int) core.HistoryRecord {
	return core.HistoryRecord{
		ExecutionResult: core.ExecutionResult{
			ExecutionID: fmt.Sprintf("%s-%d", agentID, n),
			AgentID:     agentID,
			Success:     true,
			StartedAt:   time.Now(),
		},
		RecordedAt: time.Now(),
	}
}

func TestInMemoryStore_Record_EvictsOldestFirst(t *testing.T) {
	store := NewInMemoryStore(WithCap(5))

	for i := 0; i < 10; i++ {
		assert.NoError(t, store.Record(record("a1", i)))
	}

	records, err := store.HistoryFor("a1", 0)
	assert.NoError(t, err)
	assert.Len(t, records, 5)

	// Newest first; the five oldest are gone.
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("a1-%d", 9-i), rec.ExecutionID)
	}
}

func TestInMemoryStore_HistoryFor_Limit(t *testing.T) {
	store := NewInMemoryStore()

	for i := 0; i < 4; i++ {
		assert.NoError(t, store.Record(record("a1", i)))
	}

	records, err := store.HistoryFor("a1", 2)
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "a1-3", records[0].ExecutionID)

	// A limit beyond the retained count returns everything.
	records, err = store.HistoryFor("a1", 99)
	assert.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestInMemoryStore_HistoryFor_UnknownAgent(t *testing.T) {
	store := NewInMemoryStore()

	records, err := store.HistoryFor("ghost", 10)
	assert.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestInMemoryStore_StatusFor_DefaultsToReady(t *testing.T) {
	store := NewInMemoryStore()

	status := store.StatusFor("ghost")
	assert.Equal(t, "ghost", status.AgentID)
	assert.Equal(t, core.StateReady, status.State)
	assert.True(t, status.LastRun.IsZero())
}

func TestInMemoryStore_SetStatus_Roundtrip(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now()

	assert.NoError(t, store.SetStatus(core.AgentStatus{
		AgentID:   "a1",
		State:     core.StateError,
		LastRun:   now,
		LastError: "boom",
	}))

	status := store.StatusFor("a1")
	assert.Equal(t, core.StateError, status.State)
	assert.Equal(t, "boom", status.LastError)
	assert.Equal(t, now, status.LastRun)
}

func TestInMemoryStore_StatusForAll(t *testing.T) {
	store := NewInMemoryStore()
	assert.NoError(t, store.SetStatus(core.AgentStatus{AgentID: "a1", State: core.StateCompleted}))

	statuses := store.StatusForAll([]string{"a1", "a2"})
	assert.Len(t, statuses, 2)
	assert.Equal(t, core.StateCompleted, statuses["a1"].State)
	assert.Equal(t, core.StateReady, statuses["a2"].State)
}

func TestInMemoryStore_LatestArtifact(t *testing.T) {
	store := NewInMemoryStore()

	withArtifacts := record("a1", 0)
	withArtifacts.TablePath = "out/a1.csv"
	withArtifacts.ReportPath = "out/a1.md"
	assert.NoError(t, store.Record(withArtifacts))

	// Later failed attempts without artifacts must not shadow it.
	assert.NoError(t, store.Record(record("a1", 1)))
	assert.NoError(t, store.Record(record("a1", 2)))

	latest, err := store.LatestArtifact("a1")
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, "a1-0", latest.ExecutionID)
	assert.Equal(t, "out/a1.csv", latest.TablePath)
}

func TestInMemoryStore_LatestArtifact_NoneRecorded(t *testing.T) {
	store := NewInMemoryStore()
	assert.NoError(t, store.Record(record("a1", 0)))

	latest, err := store.LatestArtifact("a1")
	assert.NoError(t, err)
	assert.Nil(t, latest)

	latest, err = store.LatestArtifact("ghost")
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestInMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore(WithCap(1000))

	var wg sync.WaitGroup
	for _, agentID := range []string{"a1", "a2", "a3"} {
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(id string, n int) {
				defer wg.Done()
				assert.NoError(t, store.Record(record(id, n)))
			}(agentID, i)
		}
	}
	wg.Wait()

	for _, agentID := range []string{"a1", "a2", "a3"} {
		records, err := store.HistoryFor(agentID, 0)
		assert.NoError(t, err)
		assert.Len(t, records, 50)
	}
}
