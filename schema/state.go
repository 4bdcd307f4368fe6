package schema

import (
	"reflect"

	strata "github.com/strata-db/strata"
)

// An Entity is anything carrying per-instance slot state for a property
// set. Generated entity structs embed State, which satisfies the interface
// by returning itself.
type Entity interface {
	EntityState() *State
}

// A LoadFunc fetches the named properties of a persisted entity in one
// round trip and materializes them into its state. The adapter installs it
// when it constructs entities from decoded rows.
type LoadFunc func(names []string) error

type slot struct {
	value       any
	loaded      bool
	original    any
	hasOriginal bool
}

// State holds the per-entity slot vector consumed by the property
// protocol: for each property at most one slot that is unset or holds the
// current value, plus the recorded originals used for dirty tracking.
type State struct {
	set       *Set
	slots     []slot
	persisted bool
	loader    LoadFunc
}

// NewState returns empty slot state for the given property set.
func NewState(set *Set) *State {
	return &State{set: set, slots: make([]slot, set.Len())}
}

// EntityState satisfies Entity for embedders.
func (s *State) EntityState() *State { return s }

// Schema returns the owning property set.
func (s *State) Schema() *Set { return s.set }

// Persisted reports whether the entity has been saved or loaded.
func (s *State) Persisted() bool { return s.persisted }

// SetLoader installs the lazy-load hook.
func (s *State) SetLoader(f LoadFunc) { s.loader = f }

// Materialize stores values decoded from the store: the slots become loaded
// and clean, and the entity counts as persisted. names and values align.
func (s *State) Materialize(names []string, values []any) error {
	for i, n := range names {
		p, ok := s.set.Get(n)
		if !ok {
			return strata.NewUsageError("materialize", strata.ErrUnknownProperty)
		}
		s.slots[p.ordinal] = slot{value: values[i], loaded: true}
	}
	s.persisted = true
	return nil
}

// Sync marks the entity persisted and clears dirty tracking; the adapter
// calls it after a successful save.
func (s *State) Sync() {
	s.persisted = true
	for i := range s.slots {
		s.slots[i].original = nil
		s.slots[i].hasOriginal = false
	}
}

// Original returns the recorded pre-change value of the named property.
// The second result is false when no change has been recorded.
func (s *State) Original(name string) (any, bool) {
	p, ok := s.set.Get(name)
	if !ok || !s.slots[p.ordinal].hasOriginal {
		return nil, false
	}
	return s.slots[p.ordinal].original, true
}

// Dirty returns the properties whose slots hold unsaved changes, in
// declaration order: on a new entity every loaded slot, on a persisted one
// every slot with a recorded original.
func (s *State) Dirty() []*Property {
	var out []*Property
	for _, p := range s.set.props {
		sl := s.slots[p.ordinal]
		switch {
		case !sl.loaded:
		case !s.persisted, sl.hasOriginal:
			out = append(out, p)
		}
	}
	return out
}

// Load fetches the named properties through the installed loader.
func (s *State) Load(names []string) error {
	if s.loader == nil {
		return strata.NewUsageError("lazy load", strata.ErrNotPersisted)
	}
	return s.loader(names)
}

func (s *State) slotValue(i int) (any, bool) {
	if !s.slots[i].loaded {
		return nil, false
	}
	return s.slots[i].value, true
}

func (s *State) slotLoaded(i int) bool { return s.slots[i].loaded }

// materializeSlot stores a default without marking it clean: on a new
// entity the loaded slot is dirty by construction, so the insert includes
// the materialized default.
func (s *State) materializeSlot(i int, v any) {
	s.slots[i] = slot{value: v, loaded: true}
}

func (s *State) setSlot(i int, v any) any {
	sl := &s.slots[i]
	if sl.loaded && equal(sl.value, v) {
		return sl.value
	}
	switch {
	case sl.hasOriginal && equal(v, sl.original) && s.persisted:
		// Setting back to the persisted value: the entity is unmodified
		// again, so the record clears.
		sl.original = nil
		sl.hasOriginal = false
	case !sl.hasOriginal:
		sl.original = sl.value
		sl.hasOriginal = true
	}
	sl.value = v
	sl.loaded = true
	return v
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
