package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/inflect"

	strata "github.com/strata-db/strata"
	"github.com/strata-db/strata/schema/field"
)

// A Property is one compiled field of a model: its kind, storage column,
// flags, default policy and the get/set protocol over entity slots. It is
// immutable after Compile except for the memoized column name, which may be
// recomputed redundantly without locking since the result never differs.
type Property struct {
	desc    *field.Descriptor
	set     *Set
	ordinal int
	column  string // memoized storage name
}

// Name returns the declared field name.
func (p *Property) Name() string { return p.desc.Name }

// Kind returns the semantic field kind.
func (p *Property) Kind() field.Type { return p.desc.Type }

// Ordinal returns the declaration position inside the owning set.
func (p *Property) Ordinal() int { return p.ordinal }

// Key reports whether the property is part of the model key.
func (p *Property) Key() bool { return p.desc.Key }

// Serial reports whether the store assigns the value on insert.
func (p *Property) Serial() bool { return p.desc.Serial }

// Nullable reports whether NULL is a legal stored value.
func (p *Property) Nullable() bool { return p.desc.Nullable }

// Unique reports whether the property carries a uniqueness constraint.
func (p *Property) Unique() bool { return p.desc.Unique }

// Lazy reports whether the property is excluded from eager loading.
func (p *Property) Lazy() bool { return p.desc.Lazy }

// LazyGroups returns the named lazy contexts the property belongs to.
func (p *Property) LazyGroups() []string { return p.desc.LazyGroups }

// Precision returns the significant-digit count of a decimal property.
func (p *Property) Precision() int { return p.desc.Precision }

// Scale returns the fractional-digit count of a decimal property.
func (p *Property) Scale() int { return p.desc.Scale }

// Length returns the size bound of a bounded property.
func (p *Property) Length() int64 { return p.desc.Length }

// HasDefault reports whether the property declares a default, static or
// computed.
func (p *Property) HasDefault() bool {
	return p.desc.Default != nil || p.desc.DefaultFunc != nil
}

// Column returns the storage name: the declared override if present,
// otherwise the underscored field name. The result is memoized.
func (p *Property) Column() string {
	if p.column != "" {
		return p.column
	}
	c := p.desc.Column
	if c == "" {
		c = inflect.Underscore(p.desc.Name)
	}
	p.column = c
	return c
}

// Get returns the property's value for the entity. On a new entity with an
// unset slot the declared default is materialized and stored; on a
// persisted entity an unset slot triggers a lazy load of the property's
// whole loading context before reading, so one round trip serves the group
// instead of one per field.
func (p *Property) Get(e Entity) (any, error) {
	st := e.EntityState()
	if v, ok := st.slotValue(p.ordinal); ok {
		return v, nil
	}
	if !st.Persisted() {
		if !p.HasDefault() {
			return nil, nil
		}
		v := p.defaultValue(e)
		st.materializeSlot(p.ordinal, v)
		return v, nil
	}
	names, err := p.loadScope(st)
	if err != nil {
		return nil, err
	}
	if err := st.Load(names); err != nil {
		return nil, err
	}
	v, _ := st.slotValue(p.ordinal)
	return v, nil
}

// loadScope returns the property names one adapter round trip must fetch to
// satisfy a read of p: the property's own lazy context if it is lazy,
// otherwise the eager default set minus whatever is already loaded.
func (p *Property) loadScope(st *State) ([]string, error) {
	if p.desc.Lazy {
		return p.set.LazyContext(p.desc.Name)
	}
	var names []string
	for _, d := range p.set.Defaults() {
		if !st.slotLoaded(d.ordinal) {
			names = append(names, d.desc.Name)
		}
	}
	if len(names) == 0 {
		names = []string{p.desc.Name}
	}
	return names, nil
}

// Set assigns v to the entity's slot and returns the value now held.
// Assigning the already-loaded, equal value is a no-op. Otherwise the prior
// value is recorded as the original for dirty tracking; assigning a value
// back to its recorded original on a persisted entity clears the record.
func (p *Property) Set(e Entity, v any) any {
	st := e.EntityState()
	return st.setSlot(p.ordinal, v)
}

// Value converts an in-memory value to its storable primitive. Custom kinds
// delegate to their registered codec; built-in kinds pass the value through
// unchanged, since only custom kinds need a symmetrical encode/decode.
func (p *Property) Value(raw any) (any, error) {
	if raw == nil || p.desc.Type != field.TypeOther || p.desc.CodecName == "" {
		return raw, nil
	}
	c, ok := field.CodecFor(p.desc.CodecName)
	if !ok {
		return nil, strata.NewDefinitionError(p.desc.Name, "unregistered codec %s", p.desc.CodecName)
	}
	return c.Encode(raw)
}

// Decode converts a row primitive back to the property's value shape.
func (p *Property) Decode(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch p.desc.Type {
	case field.TypeOther:
		c, ok := field.CodecFor(p.desc.CodecName)
		if !ok {
			return nil, strata.NewDefinitionError(p.desc.Name, "unregistered codec %s", p.desc.CodecName)
		}
		return c.Decode(raw)
	case field.TypeText:
		if b, ok := raw.([]byte); ok {
			return string(b), nil
		}
		return raw, nil
	case field.TypeInt:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case []byte:
			var n int64
			if _, err := fmt.Sscan(string(v), &n); err != nil {
				return nil, fmt.Errorf("strata: decode %s: %w", p.desc.Name, err)
			}
			return n, nil
		default:
			return raw, nil
		}
	case field.TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		default:
			return raw, nil
		}
	case field.TypeDecimal:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case []byte:
			var f float64
			if _, err := fmt.Sscan(string(v), &f); err != nil {
				return nil, fmt.Errorf("strata: decode %s: %w", p.desc.Name, err)
			}
			return f, nil
		default:
			return raw, nil
		}
	case field.TypeTime:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			return parseTime(v)
		case []byte:
			return parseTime(string(v))
		default:
			return raw, nil
		}
	default:
		return raw, nil
	}
}

func parseTime(s string) (any, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("strata: unparseable time %q", s)
}

// defaultValue materializes the declared default for e: the generator is
// invoked with the entity and the property; a static default is copied so
// entities never share mutable state.
func (p *Property) defaultValue(e Entity) any {
	if p.desc.DefaultFunc != nil {
		return p.desc.DefaultFunc(e, p)
	}
	return copyValue(p.desc.Default)
}

// copyValue returns a fresh copy of v for slice and map defaults; scalars
// are returned as is.
func copyValue(v any) any {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for it := rv.MapRange(); it.Next(); {
			out.SetMapIndex(it.Key(), it.Value())
		}
		return out.Interface()
	default:
		return v
	}
}
