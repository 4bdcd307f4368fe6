package query

import (
	"reflect"
	"regexp"
)

// An Operator names the comparison a condition applies. The comparator
// emitted for a condition depends on both the operator and the runtime
// shape of the operand; see the adapter package.
type Operator uint8

// The condition operator set.
const (
	OpEql Operator = iota
	OpNot
	OpLike
	OpGt
	OpGte
	OpLt
	OpLte
	OpRaw
)

var operatorNames = [...]string{
	OpEql: "eql", OpNot: "not", OpLike: "like",
	OpGt: "gt", OpGte: "gte", OpLt: "lt", OpLte: "lte", OpRaw: "raw",
}

// String returns the operator name.
func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "invalid"
}

// A Range is a bounded operand. An inclusive range compiles to BETWEEN;
// an exclusive range is always rewritten into two inclusive comparisons
// and never emitted as native range SQL.
type Range struct {
	Min, Max  any
	Exclusive bool
}

// Between returns the inclusive range [min, max].
func Between(min, max any) Range { return Range{Min: min, Max: max} }

// Span returns the exclusive range [min, max): it matches min but not max.
func Span(min, max any) Range { return Range{Min: min, Max: max, Exclusive: true} }

// A RawFragment is verbatim statement text with positional bind values,
// usable as a condition operand under OpRaw.
type RawFragment struct {
	SQL  string
	Args []any
}

// A Condition is one (operator, field, operand) filter triple. Field names
// the declared property; for OpRaw it is empty and the operand is a
// RawFragment.
type Condition struct {
	Op    Operator
	Field string
	Value any
}

// Eql filters on equality. Arrays become membership tests, inclusive
// ranges become BETWEEN, nil becomes IS NULL.
func Eql(field string, v any) Condition { return Condition{Op: OpEql, Field: field, Value: v} }

// Not filters on negated equality, with the same operand-shape dispatch as
// Eql.
func Not(field string, v any) Condition { return Condition{Op: OpNot, Field: field, Value: v} }

// Like filters on a wildcard pattern; pass a *regexp.Regexp for a native
// regular-expression match instead.
func Like(field string, v any) Condition { return Condition{Op: OpLike, Field: field, Value: v} }

// Gt filters on strictly-greater.
func Gt(field string, v any) Condition { return Condition{Op: OpGt, Field: field, Value: v} }

// Gte filters on greater-or-equal.
func Gte(field string, v any) Condition { return Condition{Op: OpGte, Field: field, Value: v} }

// Lt filters on strictly-less.
func Lt(field string, v any) Condition { return Condition{Op: OpLt, Field: field, Value: v} }

// Lte filters on less-or-equal.
func Lte(field string, v any) Condition { return Condition{Op: OpLte, Field: field, Value: v} }

// Raw embeds a verbatim condition fragment.
func Raw(sql string, args ...any) Condition {
	return Condition{Op: OpRaw, Value: RawFragment{SQL: sql, Args: args}}
}

// Shape classifies a condition operand at translation time.
type Shape uint8

// Operand shapes.
const (
	ShapeScalar Shape = iota
	ShapeNil
	ShapeArray
	ShapeRange
	ShapePattern
	ShapeRaw
)

// OperandShape returns the runtime shape of v.
func OperandShape(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeNil
	case Range:
		return ShapeRange
	case *regexp.Regexp:
		return ShapePattern
	case RawFragment:
		return ShapeRaw
	case string, []byte:
		return ShapeScalar
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return ShapeArray
	}
	return ShapeScalar
}

// ArrayValues returns the elements of an array-shaped operand.
func ArrayValues(v any) []any {
	if vs, ok := v.([]any); ok {
		return vs
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
