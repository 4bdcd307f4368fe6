// Package query holds the declarative query value consumed by the
// translation engine: a target model, a field projection, AND-ed
// conditions, ordering, limit/offset and join links. A query carries no
// SQL; the adapter package compiles it per dialect.
package query

import "github.com/strata-db/strata/schema"

// An Order is one ordering term.
type Order struct {
	Field string
	Desc  bool
}

// A Link correlates the queried model with a parent model: the ordered
// parent-key and child-key property lists pair up positionally in the join
// condition. ParentTable is the parent model's storage name; ChildTable is
// the joining side's storage name and defaults to the queried model's
// table, so only intermediate links of a chain need to set it.
type Link struct {
	ParentTable string
	ChildTable  string
	ParentKeys  []string
	ChildKeys   []string
}

// A Query groups everything one read or write targets. The zero limit and
// offset mean "absent".
type Query struct {
	Model      *schema.Set
	Fields     []string // projection; empty means the model's default set
	Conditions []Condition
	OrderBy    []Order
	Limit      int
	Offset     int
	Links      []Link
	Unique     bool // force de-duplicated (aggregated) rows
}

// New returns a query against the given model.
func New(model *schema.Set) *Query {
	return &Query{Model: model}
}

// Select sets the field projection.
func (q *Query) Select(fields ...string) *Query {
	q.Fields = fields
	return q
}

// Where appends conditions; all conditions of a query are AND-ed.
func (q *Query) Where(conds ...Condition) *Query {
	q.Conditions = append(q.Conditions, conds...)
	return q
}

// Order appends an ascending ordering term.
func (q *Query) Order(field string) *Query {
	q.OrderBy = append(q.OrderBy, Order{Field: field})
	return q
}

// OrderDesc appends a descending ordering term.
func (q *Query) OrderDesc(field string) *Query {
	q.OrderBy = append(q.OrderBy, Order{Field: field, Desc: true})
	return q
}

// WithLimit bounds the row count.
func (q *Query) WithLimit(n int) *Query {
	q.Limit = n
	return q
}

// WithOffset skips the first n rows.
func (q *Query) WithOffset(n int) *Query {
	q.Offset = n
	return q
}

// Join appends a link to a parent model. Links chain: each call joins one
// step further from the queried model.
func (q *Query) Join(l Link) *Query {
	q.Links = append(q.Links, l)
	return q
}

// FieldNames returns the effective projection: the declared fields, or the
// model's eager default set when none were declared.
func (q *Query) FieldNames() []string {
	if len(q.Fields) > 0 {
		return q.Fields
	}
	defaults := q.Model.Defaults()
	names := make([]string, len(defaults))
	for i, p := range defaults {
		names[i] = p.Name()
	}
	return names
}
