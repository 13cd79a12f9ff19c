// Package history provides the execution journal and status snapshot store.
// The in-memory implementation keeps one bounded, insertion-ordered record
// sequence per agent id plus the agent's current status; a sqlite-backed
// implementation lives in the sqlite subpackage.
package history

import (
	"sync"

	"github.com/hupe1980/agentfleet/core"
)

// DefaultCap is the number of history records retained per agent before the
// oldest are evicted.
const DefaultCap = 100

// bucket holds one agent's journal and status behind its own lock, so
// concurrent appends for different agent ids never contend.
type bucket struct {
	mu      sync.RWMutex
	records []core.HistoryRecord
	status  core.AgentStatus
	hasStat bool
}

// InMemoryStore is a process-lifetime HistoryStore. It is safe for
// concurrent use and best suited for tests, the CLI and single-process
// deployments; use history/sqlite for durability across restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	cap     int
}

var _ core.HistoryStore = (*InMemoryStore)(nil)

// Options configures an InMemoryStore.
type Options struct {
	// Cap bounds the retained records per agent. Defaults to DefaultCap.
	Cap int
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Cap: DefaultCap}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Cap <= 0 {
		opts.Cap = DefaultCap
	}

	return &InMemoryStore{buckets: make(map[string]*bucket), cap: opts.Cap}
}

// WithCap overrides the per-agent retention cap.
func WithCap(n int) func(o *Options) {
	return func(o *Options) { o.Cap = n }
}

// bucketFor returns the agent's bucket, creating it on first use.
func (s *InMemoryStore) bucketFor(agentID string) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[agentID]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.buckets[agentID]; ok {
		return b
	}
	b = &bucket{}
	s.buckets[agentID] = b
	return b
}

// Record appends to the agent's journal, evicting oldest-first once the cap
// is exceeded.
func (s *InMemoryStore) Record(rec core.HistoryRecord) error {
	b := s.bucketFor(rec.AgentID)
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, rec)
	if excess := len(b.records) - s.cap; excess > 0 {
		b.records = append(b.records[:0:0], b.records[excess:]...)
	}
	return nil
}

// HistoryFor returns up to limit records for agentID, most recent first.
func (s *InMemoryStore) HistoryFor(agentID string, limit int) ([]core.HistoryRecord, error) {
	s.mu.RLock()
	b, ok := s.buckets[agentID]
	s.mu.RUnlock()
	if !ok {
		return []core.HistoryRecord{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]core.HistoryRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, b.records[i])
	}
	return out, nil
}

// SetStatus replaces the agent's current snapshot.
func (s *InMemoryStore) SetStatus(status core.AgentStatus) error {
	b := s.bucketFor(status.AgentID)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.hasStat = true
	return nil
}

// StatusFor returns the agent's snapshot, or a default StateReady snapshot
// for ids that never ran.
func (s *InMemoryStore) StatusFor(agentID string) core.AgentStatus {
	s.mu.RLock()
	b, ok := s.buckets[agentID]
	s.mu.RUnlock()
	if !ok {
		return core.AgentStatus{AgentID: agentID, State: core.StateReady}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.hasStat {
		return core.AgentStatus{AgentID: agentID, State: core.StateReady}
	}
	return b.status
}

// StatusForAll returns snapshots for the given ids.
func (s *InMemoryStore) StatusForAll(agentIDs []string) map[string]core.AgentStatus {
	out := make(map[string]core.AgentStatus, len(agentIDs))
	for _, id := range agentIDs {
		out[id] = s.StatusFor(id)
	}
	return out
}

// LatestArtifact scans the journal newest-first for the most recent record
// that left persisted artifacts behind.
func (s *InMemoryStore) LatestArtifact(agentID string) (*core.HistoryRecord, error) {
	s.mu.RLock()
	b, ok := s.buckets[agentID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.records) - 1; i >= 0; i-- {
		if b.records[i].HasArtifacts() {
			rec := b.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}
