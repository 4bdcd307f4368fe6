package field

import (
	"errors"
	"time"
)

// A DefaultFunc computes a field's default lazily, on the first unset read
// of a new entity. It receives the entity instance and the compiled
// property descriptor.
type DefaultFunc func(entity, property any) any

// A Builder is any fluent field builder; Descriptor finalizes the
// declaration. schema.Compile consumes builders directly, so declarations
// read as one chain without a trailing finalize call.
type Builder interface {
	Descriptor() *Descriptor
}

// A Descriptor is the finalized declaration of one field. Builders produce
// it; schema.Compile consumes it. Definition-time failures are recorded in
// Err rather than raised, so a schema can report the first broken field.
type Descriptor struct {
	Name   string // declared field name
	Type   Type   // semantic kind
	Column string // storage name override; empty means "derive by convention"

	Key      bool // part of the model key
	Serial   bool // store-assigned, auto-incrementing
	Nullable bool
	Unique   bool
	// Explicit-override tracking: Serial/Key force Unique and Key forces
	// NOT NULL only when the author did not say otherwise.
	NullableSet bool
	UniqueSet   bool

	Lazy       bool
	LazyGroups []string // named lazy contexts; empty with Lazy means a group of one

	IndexAnon        bool
	IndexNames       []string
	UniqueIndexAnon  bool
	UniqueIndexNames []string

	Default     any         // static default; nil means no default
	DefaultFunc DefaultFunc // computed default; mutually exclusive with Default

	Precision int
	Scale     int
	Length    int64

	CodecName string // custom value codec; only meaningful for TypeOther

	Err error
}

func (d *Descriptor) setErr(err error) {
	if d.Err == nil {
		d.Err = err
	}
}

// intBuilder builds integer fields.
type intBuilder struct{ desc *Descriptor }

// Int returns a new integer field with the given name.
func Int(name string) intBuilder {
	return intBuilder{&Descriptor{Name: name, Type: TypeInt}}
}

// Key marks the field as part of the model key.
func (b intBuilder) Key() intBuilder { b.desc.Key = true; return b }

// Serial marks the field as store-assigned and auto-incrementing.
func (b intBuilder) Serial() intBuilder { b.desc.Serial = true; return b }

// Nullable allows NULL values.
func (b intBuilder) Nullable() intBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// NonNullable forbids NULL values even where a flag would allow them.
func (b intBuilder) NonNullable() intBuilder {
	b.desc.Nullable, b.desc.NullableSet = false, true
	return b
}

// Unique adds a uniqueness constraint.
func (b intBuilder) Unique() intBuilder {
	b.desc.Unique, b.desc.UniqueSet = true, true
	return b
}

// NonUnique overrides the uniqueness a Key or Serial flag would imply.
func (b intBuilder) NonUnique() intBuilder {
	b.desc.Unique, b.desc.UniqueSet = false, true
	return b
}

// Lazy excludes the field from eager loading. With no arguments the field
// loads alone on first access; with group names it loads together with
// every field sharing any of the groups.
func (b intBuilder) Lazy(groups ...string) intBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Index declares an index. With no arguments the index is anonymous and
// single-column; with names the field joins each named, possibly
// multi-column index.
func (b intBuilder) Index(names ...string) intBuilder {
	declareIndex(b.desc, names)
	return b
}

// UniqueIndex declares a unique index, same shape as Index.
func (b intBuilder) UniqueIndex(names ...string) intBuilder {
	declareUniqueIndex(b.desc, names)
	return b
}

// Default sets a static default value.
func (b intBuilder) Default(v int64) intBuilder { b.desc.Default = v; return b }

// DefaultFunc sets a computed default, evaluated on first unset read.
func (b intBuilder) DefaultFunc(f DefaultFunc) intBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b intBuilder) Column(name string) intBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b intBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// textBuilder builds bounded text fields.
type textBuilder struct{ desc *Descriptor }

// Text returns a new text field with the given name.
func Text(name string) textBuilder {
	return textBuilder{&Descriptor{Name: name, Type: TypeText}}
}

// Key marks the field as part of the model key.
func (b textBuilder) Key() textBuilder { b.desc.Key = true; return b }

// Nullable allows NULL values.
func (b textBuilder) Nullable() textBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// NonNullable forbids NULL values.
func (b textBuilder) NonNullable() textBuilder {
	b.desc.Nullable, b.desc.NullableSet = false, true
	return b
}

// Unique adds a uniqueness constraint.
func (b textBuilder) Unique() textBuilder {
	b.desc.Unique, b.desc.UniqueSet = true, true
	return b
}

// NonUnique overrides implied uniqueness.
func (b textBuilder) NonUnique() textBuilder {
	b.desc.Unique, b.desc.UniqueSet = false, true
	return b
}

// Lazy excludes the field from eager loading.
func (b textBuilder) Lazy(groups ...string) textBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Index declares an index.
func (b textBuilder) Index(names ...string) textBuilder {
	declareIndex(b.desc, names)
	return b
}

// UniqueIndex declares a unique index.
func (b textBuilder) UniqueIndex(names ...string) textBuilder {
	declareUniqueIndex(b.desc, names)
	return b
}

// Length bounds the stored size. The kind default is 255.
func (b textBuilder) Length(n int64) textBuilder { b.desc.Length = n; return b }

// Default sets a static default value.
func (b textBuilder) Default(v string) textBuilder { b.desc.Default = v; return b }

// DefaultFunc sets a computed default.
func (b textBuilder) DefaultFunc(f DefaultFunc) textBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b textBuilder) Column(name string) textBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b textBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// boolBuilder builds boolean fields.
type boolBuilder struct{ desc *Descriptor }

// Bool returns a new boolean field with the given name.
func Bool(name string) boolBuilder {
	return boolBuilder{&Descriptor{Name: name, Type: TypeBool}}
}

// Nullable allows NULL values.
func (b boolBuilder) Nullable() boolBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// Lazy excludes the field from eager loading.
func (b boolBuilder) Lazy(groups ...string) boolBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Index declares an index.
func (b boolBuilder) Index(names ...string) boolBuilder {
	declareIndex(b.desc, names)
	return b
}

// Default sets a static default value.
func (b boolBuilder) Default(v bool) boolBuilder { b.desc.Default = v; return b }

// DefaultFunc sets a computed default.
func (b boolBuilder) DefaultFunc(f DefaultFunc) boolBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b boolBuilder) Column(name string) boolBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b boolBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// decimalBuilder builds fixed-point numeric fields.
type decimalBuilder struct{ desc *Descriptor }

// Decimal returns a new decimal field with the given name. Precision and
// scale default to 10 and 0.
func Decimal(name string) decimalBuilder {
	s := StorageDefaults(TypeDecimal)
	return decimalBuilder{&Descriptor{Name: name, Type: TypeDecimal, Precision: s.Precision, Scale: s.Scale}}
}

// Key marks the field as part of the model key.
func (b decimalBuilder) Key() decimalBuilder { b.desc.Key = true; return b }

// Nullable allows NULL values.
func (b decimalBuilder) Nullable() decimalBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// Unique adds a uniqueness constraint.
func (b decimalBuilder) Unique() decimalBuilder {
	b.desc.Unique, b.desc.UniqueSet = true, true
	return b
}

// Lazy excludes the field from eager loading.
func (b decimalBuilder) Lazy(groups ...string) decimalBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Index declares an index.
func (b decimalBuilder) Index(names ...string) decimalBuilder {
	declareIndex(b.desc, names)
	return b
}

// UniqueIndex declares a unique index.
func (b decimalBuilder) UniqueIndex(names ...string) decimalBuilder {
	declareUniqueIndex(b.desc, names)
	return b
}

// Precision sets the total number of significant digits.
func (b decimalBuilder) Precision(p int) decimalBuilder { b.desc.Precision = p; return b }

// Scale sets the number of fractional digits.
func (b decimalBuilder) Scale(s int) decimalBuilder { b.desc.Scale = s; return b }

// Default sets a static default value.
func (b decimalBuilder) Default(v float64) decimalBuilder { b.desc.Default = v; return b }

// DefaultFunc sets a computed default.
func (b decimalBuilder) DefaultFunc(f DefaultFunc) decimalBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b decimalBuilder) Column(name string) decimalBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b decimalBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// timeBuilder builds timestamp fields.
type timeBuilder struct{ desc *Descriptor }

// Time returns a new timestamp field with the given name.
func Time(name string) timeBuilder {
	return timeBuilder{&Descriptor{Name: name, Type: TypeTime}}
}

// Key marks the field as part of the model key.
func (b timeBuilder) Key() timeBuilder { b.desc.Key = true; return b }

// Nullable allows NULL values.
func (b timeBuilder) Nullable() timeBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// Lazy excludes the field from eager loading.
func (b timeBuilder) Lazy(groups ...string) timeBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Index declares an index.
func (b timeBuilder) Index(names ...string) timeBuilder {
	declareIndex(b.desc, names)
	return b
}

// Default sets a static default value.
func (b timeBuilder) Default(v time.Time) timeBuilder { b.desc.Default = v; return b }

// DefaultFunc sets a computed default. The usual shape is a "now" hook:
//
//	field.Time("created_at").DefaultFunc(func(_, _ any) any { return time.Now() })
func (b timeBuilder) DefaultFunc(f DefaultFunc) timeBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b timeBuilder) Column(name string) timeBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b timeBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// bytesBuilder builds raw byte fields.
type bytesBuilder struct{ desc *Descriptor }

// Bytes returns a new byte-slice field with the given name.
func Bytes(name string) bytesBuilder {
	return bytesBuilder{&Descriptor{Name: name, Type: TypeBytes}}
}

// Nullable allows NULL values.
func (b bytesBuilder) Nullable() bytesBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// Lazy excludes the field from eager loading.
func (b bytesBuilder) Lazy(groups ...string) bytesBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Length bounds the stored size.
func (b bytesBuilder) Length(n int64) bytesBuilder { b.desc.Length = n; return b }

// Default sets a static default value. Each new entity receives a fresh
// copy of the slice. Passing nil is a definition error: nil means "no
// default", not "default is nil".
func (b bytesBuilder) Default(v []byte) bytesBuilder {
	if v == nil {
		b.desc.setErr(errors.New("nil is not a valid default; omit the option instead"))
		return b
	}
	b.desc.Default = v
	return b
}

// Column overrides the derived storage name.
func (b bytesBuilder) Column(name string) bytesBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b bytesBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

// otherBuilder builds opaque fields stored through a value codec.
type otherBuilder struct{ desc *Descriptor }

// Other returns a new opaque field with the given name, stored through the
// msgpack codec unless Codec overrides it.
func Other(name string) otherBuilder {
	return otherBuilder{&Descriptor{Name: name, Type: TypeOther, CodecName: "msgpack"}}
}

// UUID returns a new UUID field with the given name, stored as text through
// the uuid codec.
func UUID(name string) otherBuilder {
	return otherBuilder{&Descriptor{Name: name, Type: TypeOther, CodecName: "uuid"}}
}

// Key marks the field as part of the model key.
func (b otherBuilder) Key() otherBuilder { b.desc.Key = true; return b }

// Nullable allows NULL values.
func (b otherBuilder) Nullable() otherBuilder {
	b.desc.Nullable, b.desc.NullableSet = true, true
	return b
}

// Unique adds a uniqueness constraint.
func (b otherBuilder) Unique() otherBuilder {
	b.desc.Unique, b.desc.UniqueSet = true, true
	return b
}

// Lazy excludes the field from eager loading.
func (b otherBuilder) Lazy(groups ...string) otherBuilder {
	b.desc.Lazy = true
	b.desc.LazyGroups = append(b.desc.LazyGroups, groups...)
	return b
}

// Codec names the registered value codec used to encode and decode the
// stored primitive.
func (b otherBuilder) Codec(name string) otherBuilder { b.desc.CodecName = name; return b }

// Default sets a static default value. Passing nil is a definition error:
// nil means "no default", not "default is nil".
func (b otherBuilder) Default(v any) otherBuilder {
	if v == nil {
		b.desc.setErr(errors.New("nil is not a valid default; omit the option instead"))
		return b
	}
	b.desc.Default = v
	return b
}

// DefaultFunc sets a computed default.
func (b otherBuilder) DefaultFunc(f DefaultFunc) otherBuilder { b.desc.DefaultFunc = f; return b }

// Column overrides the derived storage name.
func (b otherBuilder) Column(name string) otherBuilder { b.desc.Column = name; return b }

// Descriptor finalizes the field declaration.
func (b otherBuilder) Descriptor() *Descriptor {
	finalize(b.desc)
	return b.desc
}

func declareIndex(d *Descriptor, names []string) {
	if len(names) == 0 {
		d.IndexAnon = true
		return
	}
	d.IndexNames = append(d.IndexNames, names...)
}

func declareUniqueIndex(d *Descriptor, names []string) {
	if len(names) == 0 {
		d.UniqueIndexAnon = true
		return
	}
	d.UniqueIndexNames = append(d.UniqueIndexNames, names...)
}

// finalize applies the kind defaults and records definition errors that a
// single descriptor can detect without its siblings.
func finalize(d *Descriptor) {
	if d.Name == "" {
		d.setErr(errors.New("field name must not be empty"))
	}
	if !d.Type.Valid() {
		d.setErr(errors.New("invalid field kind"))
	}
	if d.Type.Bounded() && d.Length == 0 {
		d.Length = StorageDefaults(d.Type).Length
	}
	if d.Length != 0 && !d.Type.Bounded() {
		d.setErr(errors.New("length applies only to bounded kinds"))
	}
	if d.Length < 0 {
		d.setErr(errors.New("length must be positive"))
	}
	if d.Type == TypeDecimal {
		switch {
		case d.Precision <= 0:
			d.setErr(errors.New("precision must be greater than zero"))
		case d.Scale < 0:
			d.setErr(errors.New("scale must not be negative"))
		case d.Precision < d.Scale:
			d.setErr(errors.New("precision must not be less than scale"))
		}
	}
	if d.Serial && d.Type != TypeInt {
		d.setErr(errors.New("serial applies only to integer fields"))
	}
	if d.Default != nil && d.DefaultFunc != nil {
		d.setErr(errors.New("static and computed defaults are mutually exclusive"))
	}
	if d.Type == TypeOther && d.CodecName != "" {
		if _, ok := CodecFor(d.CodecName); !ok {
			d.setErr(errors.New("unregistered codec " + d.CodecName))
		}
	}
	// Serial and key fields are unique unless the author overrode it, and
	// key fields reject NULL unless told otherwise.
	if (d.Serial || d.Key) && !d.UniqueSet {
		d.Unique = true
	}
	if d.Key && !d.NullableSet {
		d.Nullable = false
	}
}
