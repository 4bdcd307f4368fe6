package field

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// A Type is a semantic field kind. The storage representation of a kind is
// decided by the dialect; the kind decides defaulting, comparison and codec
// behavior.
type Type uint8

// List of field kinds.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeText
	TypeBool
	TypeDecimal
	TypeTime
	TypeBytes
	TypeOther
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int",
	TypeText:    "text",
	TypeBool:    "bool",
	TypeDecimal: "decimal",
	TypeTime:    "time",
	TypeBytes:   "bytes",
	TypeOther:   "other",
}

// String returns the kind name.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("invalid(%d)", t)
}

// Valid reports whether t is a declared kind.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Numeric reports whether the kind orders numerically.
func (t Type) Numeric() bool { return t == TypeInt || t == TypeDecimal }

// Bounded reports whether the kind accepts a length option.
func (t Type) Bounded() bool { return t == TypeText || t == TypeBytes }

// Storage holds the default storage options of a kind. A descriptor that
// leaves an option unset inherits it from here.
type Storage struct {
	Length    int64
	Precision int
	Scale     int
	Unique    bool
}

var storageDefaults = map[Type]Storage{
	TypeText:    {Length: 255},
	TypeDecimal: {Precision: 10, Scale: 0},
}

// StorageDefaults returns the default storage options for the kind.
func StorageDefaults(t Type) Storage { return storageDefaults[t] }

// A Codec converts between an in-memory value and its storable primitive.
// Only custom-registered kinds carry a codec; built-in kinds store their
// values unchanged, which is why encode/decode must be symmetrical only
// for custom kinds.
type Codec struct {
	Encode func(any) (any, error)
	Decode func(any) (any, error)
}

var codecs sync.Map // codec name -> Codec

// RegisterCodec registers a named value codec. Re-registering a name
// replaces the previous codec.
func RegisterCodec(name string, c Codec) {
	codecs.Store(name, c)
}

// CodecFor returns the codec registered under name.
func CodecFor(name string) (Codec, bool) {
	v, ok := codecs.Load(name)
	if !ok {
		return Codec{}, false
	}
	return v.(Codec), true
}

func init() {
	// Opaque values round-trip through msgpack by default.
	RegisterCodec("msgpack", Codec{
		Encode: func(v any) (any, error) {
			return msgpack.Marshal(v)
		},
		Decode: func(v any) (any, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("field: msgpack decode: expect []byte, got %T", v)
			}
			var out any
			if err := msgpack.Unmarshal(b, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
	})
	RegisterCodec("uuid", Codec{
		Encode: func(v any) (any, error) {
			switch u := v.(type) {
			case uuid.UUID:
				return u.String(), nil
			case string:
				return u, nil
			default:
				return nil, fmt.Errorf("field: uuid encode: expect uuid.UUID, got %T", v)
			}
		},
		Decode: func(v any) (any, error) {
			switch u := v.(type) {
			case string:
				return uuid.Parse(u)
			case []byte:
				return uuid.ParseBytes(u)
			case uuid.UUID:
				return u, nil
			default:
				return nil, fmt.Errorf("field: uuid decode: expect string, got %T", v)
			}
		},
	})
}
