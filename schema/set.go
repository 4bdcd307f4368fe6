package schema

import (
	"github.com/go-openapi/inflect"

	strata "github.com/strata-db/strata"
	"github.com/strata-db/strata/schema/field"
)

// An Index is one derived index definition: its identity, its columns in
// property declaration order, and whether it is unique.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// A Set is the ordered, name-indexed collection of all properties of one
// model, plus the derived views the engine consumes: the key subset, the
// eager default subset, lazy-loading groups and index definitions. Derived
// views are cached and invalidated whenever a property is added or
// replaced; recomputation is idempotent, so redundant lazy population
// needs no locking.
type Set struct {
	model string
	table string // memoized storage name; may be declared via Table option
	props []*Property
	index map[string]int

	// Derived caches. nil means "not computed yet".
	key           []*Property
	defaults      []*Property
	indexes       []Index
	uniqueIndexes []Index
	lazyGroups    map[string][]string
}

// Compile builds the property set of a model from field builders,
// finalizing each one. The first field carrying a definition error fails
// the whole model.
func Compile(model string, fields ...field.Builder) (*Set, error) {
	s := &Set{model: model, index: make(map[string]int, len(fields))}
	for _, b := range fields {
		if err := s.Put(b.Descriptor()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Model returns the model name.
func (s *Set) Model() string { return s.model }

// Table returns the model's storage name, derived once by the naming
// convention (underscore + pluralize).
func (s *Set) Table() string {
	if s.table == "" {
		s.table = inflect.Tableize(s.model)
	}
	return s.table
}

// SetTable overrides the derived storage name.
func (s *Set) SetTable(name string) { s.table = name }

// Len returns the number of declared properties.
func (s *Set) Len() int { return len(s.props) }

// Properties returns the properties in declaration order. The returned
// slice is shared; callers must not mutate it.
func (s *Set) Properties() []*Property { return s.props }

// Get returns the property declared under name.
func (s *Set) Get(name string) (*Property, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.props[i], true
}

// MustGet is Get for statically known names; it panics on absence.
func (s *Set) MustGet(name string) *Property {
	p, ok := s.Get(name)
	if !ok {
		panic("schema: unknown property " + s.model + "." + name)
	}
	return p
}

// Put inserts a compiled property. A descriptor whose name is already
// declared replaces the existing entry in its original ordinal position;
// a new name appends. Either way every derived view is invalidated.
func (s *Set) Put(d *field.Descriptor) error {
	if d.Err != nil {
		return &strata.DefinitionError{Model: s.model, Property: d.Name, Reason: d.Err.Error()}
	}
	p := &Property{desc: d, set: s}
	if i, ok := s.index[d.Name]; ok {
		p.ordinal = i
		s.props[i] = p
	} else {
		p.ordinal = len(s.props)
		s.props = append(s.props, p)
		s.index[d.Name] = p.ordinal
	}
	s.invalidate()
	return nil
}

func (s *Set) invalidate() {
	s.key = nil
	s.defaults = nil
	s.indexes = nil
	s.uniqueIndexes = nil
	s.lazyGroups = nil
}

// Key returns the key properties in declaration order. The order defines
// the composite-key tuple order everywhere: identity comparison, statement
// generation, route construction.
func (s *Set) Key() []*Property {
	if s.key == nil {
		s.key = make([]*Property, 0, 1)
		for _, p := range s.props {
			if p.desc.Key {
				s.key = append(s.key, p)
			}
		}
	}
	return s.key
}

// Defaults returns the eager-loaded subset: key properties unioned with all
// non-lazy properties, in declaration order.
func (s *Set) Defaults() []*Property {
	if s.defaults == nil {
		s.defaults = make([]*Property, 0, len(s.props))
		for _, p := range s.props {
			if p.desc.Key || !p.desc.Lazy {
				s.defaults = append(s.defaults, p)
			}
		}
	}
	return s.defaults
}

// LazyContext returns, for the requested property names, the minimal name
// set one fetch must cover: a name belonging to lazy groups expands to the
// union of all properties sharing any of those groups; a name outside any
// group passes through unchanged. The result is in declaration order.
// An empty request is a usage error.
func (s *Set) LazyContext(names ...string) ([]string, error) {
	if len(names) == 0 {
		return nil, strata.NewUsageError("lazy context", strata.ErrEmptyLazyContext)
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		p, ok := s.Get(n)
		if !ok {
			return nil, strata.NewUsageError("lazy context", strata.ErrUnknownProperty)
		}
		wanted[n] = true
		for _, g := range p.desc.LazyGroups {
			for _, member := range s.lazyGroupMembers()[g] {
				wanted[member] = true
			}
		}
	}
	out := make([]string, 0, len(wanted))
	for _, p := range s.props {
		if wanted[p.desc.Name] {
			out = append(out, p.desc.Name)
		}
	}
	return out, nil
}

func (s *Set) lazyGroupMembers() map[string][]string {
	if s.lazyGroups == nil {
		s.lazyGroups = make(map[string][]string)
		for _, p := range s.props {
			for _, g := range p.desc.LazyGroups {
				s.lazyGroups[g] = append(s.lazyGroups[g], p.desc.Name)
			}
		}
	}
	return s.lazyGroups
}

// Indexes returns the derived index definitions: every property's index
// declaration folded into a mapping from index identity to ordered column
// list. Anonymous declarations fold under the property's own column name.
func (s *Set) Indexes() []Index {
	if s.indexes == nil {
		s.indexes = s.foldIndexes(false)
	}
	return s.indexes
}

// UniqueIndexes is the same derivation over unique-index declarations.
func (s *Set) UniqueIndexes() []Index {
	if s.uniqueIndexes == nil {
		s.uniqueIndexes = s.foldIndexes(true)
	}
	return s.uniqueIndexes
}

func (s *Set) foldIndexes(unique bool) []Index {
	var (
		order []string
		cols  = make(map[string][]string)
	)
	add := func(name, col string) {
		if _, ok := cols[name]; !ok {
			order = append(order, name)
		}
		cols[name] = append(cols[name], col)
	}
	for _, p := range s.props {
		anon, names := p.desc.IndexAnon, p.desc.IndexNames
		if unique {
			anon, names = p.desc.UniqueIndexAnon, p.desc.UniqueIndexNames
		}
		if anon {
			add(p.Column(), p.Column())
		}
		for _, n := range names {
			add(n, p.Column())
		}
	}
	out := make([]Index, len(order))
	for i, n := range order {
		out[i] = Index{Name: n, Columns: cols[n], Unique: unique}
	}
	return out
}
