package schema

import "time"

// Typed views over slot values, used by generated accessors. A nil or
// foreign-typed value yields the zero value; property codecs keep slots in
// their canonical shapes, so the fallbacks only smooth over driver
// differences like int vs int64.

// AsInt returns v as int64.
func AsInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	default:
		return 0
	}
}

// AsFloat returns v as float64.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// AsString returns v as string.
func AsString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

// AsBool returns v as bool.
func AsBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	default:
		return false
	}
}

// AsTime returns v as time.Time.
func AsTime(v any) time.Time {
	if t, ok := v.(time.Time); ok {
		return t
	}
	return time.Time{}
}

// AsBytes returns v as []byte.
func AsBytes(v any) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	default:
		return nil
	}
}
