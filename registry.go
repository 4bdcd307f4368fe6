package strata

import "sync"

// Registry is an explicit collection of named model definitions. It exists
// for callers that need to enumerate or tear down models as a group, such
// as a test harness; the engine itself never consults a registry, and no
// process-global instance exists.
type Registry struct {
	mu     sync.RWMutex
	models map[string]any
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]any)}
}

// Register records a model definition under name. Re-registering a name
// replaces the previous definition in place.
func (r *Registry) Register(name string, model any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[name]; !ok {
		r.order = append(r.order, name)
	}
	r.models[name] = model
}

// Lookup returns the model registered under name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Remove deletes the model registered under name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[name]; !ok {
		return
	}
	delete(r.models, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Clear removes every registered model.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = make(map[string]any)
	r.order = nil
}
