package sql

import (
	"strconv"
	"strings"

	"github.com/strata-db/strata/dialect"
)

// Builder is the shared low-level statement writer: it accumulates
// statement text and bind values and renders dialect-specific placeholders
// and identifier quoting.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Dialect returns a statement factory bound to the given dialect.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// DialectBuilder builds statements for a fixed dialect.
type DialectBuilder struct {
	dialect string
}

// Select starts a SELECT statement with the given columns.
func (d *DialectBuilder) Select(columns ...string) *Selector {
	s := Select(columns...)
	s.dialect = d.dialect
	return s
}

// Insert starts an INSERT statement into the given table.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	i := Insert(table)
	i.dialect = d.dialect
	return i
}

// Update starts an UPDATE statement for the given table.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	u := Update(table)
	u.dialect = d.dialect
	return u
}

// Delete starts a DELETE statement for the given table.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	del := Delete(table)
	del.dialect = d.dialect
	return del
}

// SupportsReturning reports whether the dialect can append a RETURNING
// clause to INSERT, so a store-assigned identity reads back from the same
// round trip.
func SupportsReturning(dialect_ string) bool {
	return dialect_ == dialect.Postgres || dialect_ == dialect.SQLite
}

// SupportsDefaultValues reports whether the dialect has a dedicated
// zero-column insert form.
func SupportsDefaultValues(dialect_ string) bool {
	return dialect_ != dialect.MySQL
}

func (b *Builder) quote() byte {
	if b.dialect == dialect.Postgres {
		return '"'
	}
	return '`'
}

// Ident writes a possibly-qualified identifier with dialect quoting.
// Strings containing expressions (parentheses or placeholders) pass
// through verbatim.
func (b *Builder) Ident(s string) *Builder {
	if s == "*" || strings.ContainsAny(s, "()? ") {
		b.sb.WriteString(s)
		return b
	}
	q := b.quote()
	for i, part := range strings.Split(s, ".") {
		if i > 0 {
			b.sb.WriteByte('.')
		}
		b.sb.WriteByte(q)
		b.sb.WriteString(part)
		b.sb.WriteByte(q)
	}
	return b
}

// WriteString appends raw statement text.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Arg appends a bind value and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Args appends several bind values as a comma-separated placeholder list.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// String renders the statement text accumulated so far.
func (b *Builder) String() string { return b.sb.String() }

// A SelectTable names a FROM or JOIN target, optionally aliased.
type SelectTable struct {
	name  string
	alias string
}

// Table returns a new table reference.
func Table(name string) *SelectTable { return &SelectTable{name: name} }

// As sets the table alias.
func (t *SelectTable) As(alias string) *SelectTable {
	t.alias = alias
	return t
}

// C qualifies a column with the table reference.
func (t *SelectTable) C(column string) string {
	return t.ref() + "." + column
}

func (t *SelectTable) ref() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

func (t *SelectTable) write(b *Builder) {
	b.Ident(t.name)
	if t.alias != "" {
		b.WriteString(" AS ")
		b.Ident(t.alias)
	}
}

type join struct {
	table *SelectTable
	on    [][2]string
}

// Selector builds a SELECT statement.
type Selector struct {
	dialect  string
	columns  []string
	from     *SelectTable
	joins    []join
	where    *Predicate
	groupBy  []string
	orderBy  []string
	limit    *int
	offset   *int
	distinct bool
}

// Select starts a SELECT statement with the given columns.
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// From sets the FROM target.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Distinct de-duplicates result rows.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// Join appends an INNER JOIN; its ON pairs are set with On.
func (s *Selector) Join(t *SelectTable) *Selector {
	s.joins = append(s.joins, join{table: t})
	return s
}

// On appends an equality pair to the ON clause of the last join. Multiple
// calls AND the pairs together.
func (s *Selector) On(c1, c2 string) *Selector {
	if len(s.joins) > 0 {
		j := &s.joins[len(s.joins)-1]
		j.on = append(j.on, [2]string{c1, c2})
	}
	return s
}

// Where sets the WHERE predicate, AND-ing it with any previous one.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where != nil {
		s.where = And(s.where, p)
	} else {
		s.where = p
	}
	return s
}

// GroupBy appends grouping columns.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// OrderBy appends ordering terms. A term may carry a trailing " DESC".
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.orderBy = append(s.orderBy, columns...)
	return s
}

// ClearOrder drops every ordering term.
func (s *Selector) ClearOrder() *Selector {
	s.orderBy = nil
	return s
}

// Limit bounds the row count.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// ClearLimit drops the row bound.
func (s *Selector) ClearLimit() *Selector {
	s.limit = nil
	return s
}

// Offset skips the first n rows.
func (s *Selector) Offset(n int) *Selector {
	s.offset = &n
	return s
}

// Desc marks an ordering term descending.
func Desc(column string) string { return column + " DESC" }

// Query renders the statement and its bind values.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.columns) == 0 {
		b.WriteString("*")
	}
	for i, c := range s.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	if s.from != nil {
		b.WriteString(" FROM ")
		s.from.write(b)
	}
	for _, j := range s.joins {
		b.WriteString(" JOIN ")
		j.table.write(b)
		for i, on := range j.on {
			if i == 0 {
				b.WriteString(" ON ")
			} else {
				b.WriteString(" AND ")
			}
			b.Ident(on[0])
			b.WriteString(" = ")
			b.Ident(on[1])
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.write(b)
	}
	for i, c := range s.groupBy {
		if i == 0 {
			b.WriteString(" GROUP BY ")
		} else {
			b.WriteString(", ")
		}
		b.Ident(c)
	}
	for i, c := range s.orderBy {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		writeOrder(b, c)
	}
	switch {
	case s.limit != nil:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(*s.limit))
	case s.offset != nil && s.dialect != dialect.Postgres:
		// SQLite and MySQL reject OFFSET without a LIMIT clause; each has
		// an idiomatic "no limit" spelling.
		if s.dialect == dialect.MySQL {
			b.WriteString(" LIMIT 18446744073709551615")
		} else {
			b.WriteString(" LIMIT -1")
		}
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(*s.offset))
	}
	return b.String(), b.args
}

func writeOrder(b *Builder, term string) {
	for _, suffix := range []string{" DESC", " ASC"} {
		if rest, ok := strings.CutSuffix(term, suffix); ok {
			b.Ident(rest)
			b.WriteString(suffix)
			return
		}
	}
	b.Ident(term)
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    []any
	defaults  bool
	returning []string
}

// Insert starts an INSERT statement into the given table.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Columns sets the column list.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values appends one row of values.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values...)
	return i
}

// Default emits the zero-column insert form: every column takes its
// store-side default.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning appends a RETURNING clause on dialects that support it, and is
// a no-op elsewhere.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = append(i.returning, columns...)
	return i
}

// Query renders the statement and its bind values.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ")
	b.Ident(i.table)
	if i.defaults || len(i.columns) == 0 {
		if SupportsDefaultValues(i.dialect) {
			b.WriteString(" DEFAULT VALUES")
		} else {
			b.WriteString(" () VALUES ()")
		}
	} else {
		b.WriteString(" (")
		for n, c := range i.columns {
			if n > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
		b.WriteString(") VALUES (")
		b.Args(i.values...)
		b.WriteString(")")
	}
	if len(i.returning) > 0 && SupportsReturning(i.dialect) {
		b.WriteString(" RETURNING ")
		for n, c := range i.returning {
			if n > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	return b.String(), b.args
}

// UpdateBuilder builds an UPDATE statement.
type UpdateBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Update starts an UPDATE statement for the given table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns a value to a column; assignments render in call order.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where sets the WHERE predicate, AND-ing it with any previous one.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	if u.where != nil {
		u.where = And(u.where, p)
	} else {
		u.where = p
	}
	return u
}

// Query renders the statement and its bind values.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &Builder{dialect: u.dialect}
	b.WriteString("UPDATE ")
	b.Ident(u.table)
	b.WriteString(" SET ")
	for n, c := range u.columns {
		if n > 0 {
			b.WriteString(", ")
		}
		b.Ident(c)
		b.WriteString(" = ")
		b.Arg(u.values[n])
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where.write(b)
	}
	return b.String(), b.args
}

// DeleteBuilder builds a DELETE statement.
type DeleteBuilder struct {
	dialect string
	table   string
	where   *Predicate
}

// Delete starts a DELETE statement for the given table.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where sets the WHERE predicate, AND-ing it with any previous one.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	if d.where != nil {
		d.where = And(d.where, p)
	} else {
		d.where = p
	}
	return d
}

// Query renders the statement and its bind values.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &Builder{dialect: d.dialect}
	b.WriteString("DELETE FROM ")
	b.Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where.write(b)
	}
	return b.String(), b.args
}
