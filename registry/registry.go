// Package registry maps stable agent identifiers to their descriptors and
// lazily constructed instances. Resolution goes through an explicit factory
// table (kind -> constructor) built at process initialization instead of
// reflection-based name guessing.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentfleet/core"
)

// entry holds everything known about one registered agent id. The instance
// and the load error are populated on first Resolve and reused afterwards:
// resolution is idempotent and a broken agent stays broken until the
// registration changes.
type entry struct {
	desc     core.AgentDescriptor
	instance core.Agent
	loadErr  error
	loaded   bool
}

// Registry is the thread-safe id -> descriptor/instance map. It owns the
// descriptors and the lazily created instances; instances live until process
// shutdown.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]core.Factory
	entries   map[string]*entry
}

var _ core.Registry = (*Registry)(nil)

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]core.Factory),
		entries:   make(map[string]*entry),
	}
}

// RegisterFactory installs the constructor for a descriptor kind. Factories
// registered after an id of that kind failed to load do not revive it; the
// load error is cached per entry.
func (r *Registry) RegisterFactory(kind string, factory core.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Add registers a descriptor. Re-adding an existing id replaces the
// descriptor and discards any cached instance or load error, so
// configuration changes take effect on the next Resolve.
func (r *Registry) Add(desc core.AgentDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("registry: descriptor without id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[desc.ID] = &entry{desc: desc}
	return nil
}

// SetEnabled toggles the enabled flag of a registered id. The only mutable
// descriptor field after load.
func (r *Registry) SetEnabled(agentID string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[agentID]
	if !ok {
		return fmt.Errorf("registry: %w: %s", core.ErrAgentNotFound, agentID)
	}
	e.desc.Enabled = enabled
	return nil
}

// IDs returns all configured agent identifiers, sorted for stable output.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnabledIDs returns the sorted identifiers of agents eligible for a
// "run all" batch.
func (r *Registry) EnabledIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id, e := range r.entries {
		if e.desc.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Descriptor returns the stored descriptor for an identifier.
func (r *Registry) Descriptor(agentID string) (core.AgentDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[agentID]
	if !ok {
		return core.AgentDescriptor{}, false
	}
	return e.desc, true
}

// Resolve returns the live instance for agentID, constructing it on first
// use via the factory registered under the descriptor's kind. The same
// instance is returned on every subsequent call (reference equality), which
// is what makes the at-most-one-concurrent-run invariant enforceable via
// instance-local state.
func (r *Registry) Resolve(agentID string) (core.Agent, error) {
	r.mu.RLock()
	e, ok := r.entries[agentID]
	if ok && e.loaded {
		inst, loadErr := e.instance, e.loadErr
		r.mu.RUnlock()
		return inst, loadErr
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: %w: %s", core.ErrAgentNotFound, agentID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another goroutine may have loaded it.
	e, ok = r.entries[agentID]
	if !ok {
		return nil, fmt.Errorf("registry: %w: %s", core.ErrAgentNotFound, agentID)
	}
	if e.loaded {
		return e.instance, e.loadErr
	}

	e.instance, e.loadErr = r.loadLocked(e.desc)
	e.loaded = true
	return e.instance, e.loadErr
}

// loadLocked constructs an instance from its descriptor; caller must hold
// the write lock.
func (r *Registry) loadLocked(desc core.AgentDescriptor) (core.Agent, error) {
	factory, ok := r.factories[desc.FactoryKind()]
	if !ok {
		return nil, &core.LoadError{AgentID: desc.ID, Err: fmt.Errorf("no factory registered for kind %q", desc.FactoryKind())}
	}
	inst, err := factory(desc)
	if err != nil {
		return nil, &core.LoadError{AgentID: desc.ID, Err: err}
	}
	if inst == nil {
		return nil, &core.LoadError{AgentID: desc.ID, Err: fmt.Errorf("factory for kind %q returned no agent", desc.FactoryKind())}
	}
	return inst, nil
}
