package attention

import (
	"sync"

	"github.com/born-ml/attend/internal/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Registry hands out shared parameter sets by ID.
//
// Register stores a set with one reference held by the caller. Acquire adds
// a reference and returns the same pointer, never a copy. Release drops a
// reference and forgets the set once none remain. A Registry is safe for
// concurrent use.
type Registry[B tensor.Backend] struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*registryEntry[B]
}

type registryEntry[B tensor.Backend] struct {
	set  *ParameterSet[B]
	refs int
}

// NewRegistry creates an empty registry.
func NewRegistry[B tensor.Backend]() *Registry[B] {
	return &Registry[B]{entries: make(map[uuid.UUID]*registryEntry[B])}
}

// Register adds ps and returns its ID. Registering a set that is already
// present adds a reference. A nil set is rejected.
func (r *Registry[B]) Register(ps *ParameterSet[B]) (uuid.UUID, error) {
	if ps == nil {
		return uuid.Nil, errors.New("registry: cannot register a nil parameter set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[ps.id]; ok {
		e.refs++
		klog.V(2).Infof("registry: %s re-registered, refs=%d", ps.id, e.refs)
		return ps.id, nil
	}
	r.entries[ps.id] = &registryEntry[B]{set: ps, refs: 1}
	klog.V(2).Infof("registry: registered %s (%s, %d params)", ps.id, ps.scoreType, ps.Len())
	return ps.id, nil
}

// Acquire returns the set registered under id and adds a reference.
func (r *Registry[B]) Acquire(id uuid.UUID) (*ParameterSet[B], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "acquire %s", id)
	}
	e.refs++
	klog.V(2).Infof("registry: acquired %s, refs=%d", id, e.refs)
	return e.set, nil
}

// Release drops one reference to id.
func (r *Registry[B]) Release(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return errors.Wrapf(ErrNotRegistered, "release %s", id)
	}
	e.refs--
	if e.refs == 0 {
		delete(r.entries, id)
		klog.V(2).Infof("registry: released %s, removed", id)
		return nil
	}
	klog.V(2).Infof("registry: released %s, refs=%d", id, e.refs)
	return nil
}

// Refs returns the reference count of id, 0 when it is not registered.
func (r *Registry[B]) Refs(id uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of registered sets.
func (r *Registry[B]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
