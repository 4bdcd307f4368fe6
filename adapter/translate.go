package adapter

import (
	"errors"
	"fmt"
	"regexp"

	strata "github.com/strata-db/strata"
	"github.com/strata-db/strata/dialect/sql"
	"github.com/strata-db/strata/query"
	"github.com/strata-db/strata/schema"
)

// A Translator compiles declarative queries into parameterized statements
// for one dialect. It holds no connection state and is safe to share.
type Translator struct {
	dialect string
}

// NewTranslator returns a translator for the given dialect.
func NewTranslator(dialect string) *Translator {
	return &Translator{dialect: dialect}
}

// Select compiles q into a SELECT statement, its bind values, and the
// property names of the projection in column order.
func (t *Translator) Select(q *query.Query) (string, []any, []string, error) {
	var (
		names   = q.FieldNames()
		qualify = len(q.Links) > 0 || q.Unique
		table   = q.Model.Table()
	)
	cols, err := t.columns(q.Model, names, qualify)
	if err != nil {
		return "", nil, nil, err
	}
	s := sql.Dialect(t.dialect).Select(cols...).From(sql.Table(table))
	// Walk the link chain in reverse: the farthest parent joins first.
	for i := len(q.Links) - 1; i >= 0; i-- {
		l := q.Links[i]
		child := l.ChildTable
		if child == "" {
			child = table
		}
		if len(l.ParentKeys) != len(l.ChildKeys) {
			return "", nil, nil, strata.NewUsageError("join", errors.New("parent and child key lists differ in length"))
		}
		parent := sql.Table(l.ParentTable)
		s.Join(parent)
		for k := range l.ParentKeys {
			s.On(child+"."+l.ChildKeys[k], parent.C(l.ParentKeys[k]))
		}
	}
	pred, err := t.predicate(q.Model, q.Conditions, qualify, table)
	if err != nil {
		return "", nil, nil, err
	}
	if pred != nil {
		s.Where(pred)
	}
	if qualify {
		s.GroupBy(cols...)
	}
	for _, o := range q.OrderBy {
		col, err := t.column(q.Model, o.Field)
		if err != nil {
			return "", nil, nil, err
		}
		if qualify {
			col = table + "." + col
		}
		if o.Desc {
			col = sql.Desc(col)
		}
		s.OrderBy(col)
	}
	if q.Limit > 0 {
		s.Limit(q.Limit)
	}
	if q.Offset > 0 {
		s.Offset(q.Offset)
	}
	// A sole equality match on a unique property yields at most one row,
	// so ordering and limiting are provably redundant.
	if t.uniqueMatch(q) {
		s.ClearOrder()
		s.ClearLimit()
	}
	stmt, args := s.Query()
	return stmt, args, names, nil
}

// uniqueMatch reports whether q can match at most one row: no joins, no
// multi-row limit, and a single equality condition on a unique property
// with a scalar operand.
func (t *Translator) uniqueMatch(q *query.Query) bool {
	if len(q.Links) > 0 || q.Limit > 1 || len(q.Conditions) != 1 {
		return false
	}
	c := q.Conditions[0]
	if c.Op != query.OpEql || query.OperandShape(c.Value) != query.ShapeScalar {
		return false
	}
	p, ok := q.Model.Get(c.Field)
	return ok && p.Unique()
}

// Insert compiles the entity's dirty attributes into an INSERT statement.
// It returns the statement, bind values, and the returning column (empty
// when the dialect reads the identity from the last-insert-id channel or
// no store-assigned identity exists).
func (t *Translator) Insert(set *schema.Set, e schema.Entity) (string, []any, string, error) {
	ins := sql.Dialect(t.dialect).Insert(set.Table())
	st := e.EntityState()
	var n int
	for _, p := range st.Dirty() {
		raw, err := p.Get(e)
		if err != nil {
			return "", nil, "", err
		}
		// The store assigns an unset identity.
		if p.Serial() && raw == nil {
			continue
		}
		v, err := p.Value(raw)
		if err != nil {
			return "", nil, "", err
		}
		ins.Columns(p.Column()).Values(v)
		n++
	}
	if n == 0 {
		ins.Default()
	}
	var returning string
	if id := Identity(set); id != nil && sql.SupportsReturning(t.dialect) {
		returning = id.Column()
		ins.Returning(returning)
	}
	stmt, args := ins.Query()
	return stmt, args, returning, nil
}

// Update compiles the attribute assignments and q's conditions into an
// UPDATE statement. Assignments follow property declaration order.
func (t *Translator) Update(attrs map[string]any, q *query.Query) (string, []any, error) {
	if len(attrs) == 0 {
		return "", nil, strata.NewUsageError("update", errors.New("no attributes to set"))
	}
	upd := sql.Dialect(t.dialect).Update(q.Model.Table())
	for _, p := range q.Model.Properties() {
		raw, ok := attrs[p.Name()]
		if !ok {
			continue
		}
		v, err := p.Value(raw)
		if err != nil {
			return "", nil, err
		}
		upd.Set(p.Column(), v)
	}
	pred, err := t.predicate(q.Model, q.Conditions, false, "")
	if err != nil {
		return "", nil, err
	}
	if pred != nil {
		upd.Where(pred)
	}
	stmt, args := upd.Query()
	return stmt, args, nil
}

// Delete compiles q's conditions into a DELETE statement.
func (t *Translator) Delete(q *query.Query) (string, []any, error) {
	del := sql.Dialect(t.dialect).Delete(q.Model.Table())
	pred, err := t.predicate(q.Model, q.Conditions, false, "")
	if err != nil {
		return "", nil, err
	}
	if pred != nil {
		del.Where(pred)
	}
	stmt, args := del.Query()
	return stmt, args, nil
}

func (t *Translator) columns(set *schema.Set, names []string, qualify bool) ([]string, error) {
	cols := make([]string, len(names))
	for i, n := range names {
		c, err := t.column(set, n)
		if err != nil {
			return nil, err
		}
		if qualify {
			c = set.Table() + "." + c
		}
		cols[i] = c
	}
	return cols, nil
}

func (t *Translator) column(set *schema.Set, name string) (string, error) {
	p, ok := set.Get(name)
	if !ok {
		return "", strata.NewUsageError("translate", fmt.Errorf("%w: %s.%s", strata.ErrUnknownProperty, set.Model(), name))
	}
	return p.Column(), nil
}

// predicate compiles the AND-ed condition list. A nil result means no
// WHERE clause.
func (t *Translator) predicate(set *schema.Set, conds []query.Condition, qualify bool, table string) (*sql.Predicate, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	preds := make([]*sql.Predicate, len(conds))
	for i, c := range conds {
		p, err := t.condition(set, c, qualify, table)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}

// condition compiles one (operator, field, operand) triple. The comparator
// depends on both the operator and the runtime shape of the operand.
func (t *Translator) condition(set *schema.Set, c query.Condition, qualify bool, table string) (*sql.Predicate, error) {
	if c.Op == query.OpRaw {
		frag, ok := c.Value.(query.RawFragment)
		if !ok {
			return nil, strata.NewUsageError("translate", errors.New("raw condition requires a RawFragment operand"))
		}
		return sql.ExprP(frag.SQL, frag.Args...), nil
	}
	col, err := t.column(set, c.Field)
	if err != nil {
		return nil, err
	}
	if qualify {
		col = table + "." + col
	}
	shape := query.OperandShape(c.Value)
	switch c.Op {
	case query.OpEql:
		switch shape {
		case query.ShapeArray:
			return sql.In(col, query.ArrayValues(c.Value)...), nil
		case query.ShapeRange:
			r := c.Value.(query.Range)
			if r.Exclusive {
				// min <= col < max, always parenthesized so sibling AND
				// terms bind correctly.
				return sql.Group(sql.And(sql.GTE(col, r.Min), sql.LT(col, r.Max))), nil
			}
			return sql.Between(col, r.Min, r.Max), nil
		case query.ShapeNil:
			return sql.IsNull(col), nil
		default:
			return sql.EQ(col, c.Value), nil
		}
	case query.OpNot:
		switch shape {
		case query.ShapeArray:
			return sql.NotIn(col, query.ArrayValues(c.Value)...), nil
		case query.ShapeRange:
			r := c.Value.(query.Range)
			if r.Exclusive {
				// Negated exclusive range: outside [min, max). Bind order
				// stays [min, max]; Or parenthesizes the pair itself.
				return sql.Or(sql.LT(col, r.Min), sql.GTE(col, r.Max)), nil
			}
			return sql.NotBetween(col, r.Min, r.Max), nil
		case query.ShapeNil:
			return sql.NotNull(col), nil
		default:
			return sql.NEQ(col, c.Value), nil
		}
	case query.OpLike:
		if re, ok := c.Value.(*regexp.Regexp); ok {
			return sql.Regexp(col, re.String()), nil
		}
		s, ok := c.Value.(string)
		if !ok {
			return nil, strata.NewUsageError("translate", fmt.Errorf("like operand must be string or *regexp.Regexp, got %T", c.Value))
		}
		return sql.Like(col, s), nil
	case query.OpGt:
		return sql.GT(col, c.Value), nil
	case query.OpGte:
		return sql.GTE(col, c.Value), nil
	case query.OpLt:
		return sql.LT(col, c.Value), nil
	case query.OpLte:
		return sql.LTE(col, c.Value), nil
	default:
		return nil, strata.NewUsageError("translate", fmt.Errorf("unsupported operator %s", c.Op))
	}
}

// Identity returns the model's store-assigned key property, or nil.
func Identity(set *schema.Set) *schema.Property {
	for _, p := range set.Key() {
		if p.Serial() {
			return p
		}
	}
	return nil
}
