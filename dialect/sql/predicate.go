package sql

import (
	"github.com/strata-db/strata/dialect"
)

// A Predicate is a composable WHERE fragment. Predicates are plain data
// until rendered into a Builder, so one predicate value can serve several
// dialects.
type Predicate struct {
	fns []func(*Builder)
}

// P wraps the given render functions as a predicate.
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

func (p *Predicate) write(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// Append adds a render step to the predicate.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

// And joins the given predicates with AND.
func And(preds ...*Predicate) *Predicate {
	return P(func(b *Builder) {
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" AND ")
			}
			p.write(b)
		}
	})
}

// Or joins the given predicates with OR, parenthesized so the group holds
// together under sibling AND terms.
func Or(preds ...*Predicate) *Predicate {
	return P(func(b *Builder) {
		if len(preds) > 1 {
			b.WriteString("(")
		}
		for i, p := range preds {
			if i > 0 {
				b.WriteString(" OR ")
			}
			p.write(b)
		}
		if len(preds) > 1 {
			b.WriteString(")")
		}
	})
}

// Not negates the predicate.
func Not(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT (")
		p.write(b)
		b.WriteString(")")
	})
}

// Group parenthesizes the predicate.
func Group(p *Predicate) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("(")
		p.write(b)
		b.WriteString(")")
	})
}

func binary(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" " + op + " ")
		b.Arg(v)
	})
}

// EQ returns a column = value predicate.
func EQ(col string, v any) *Predicate { return binary(col, "=", v) }

// NEQ returns a column <> value predicate.
func NEQ(col string, v any) *Predicate { return binary(col, "<>", v) }

// GT returns a column > value predicate.
func GT(col string, v any) *Predicate { return binary(col, ">", v) }

// GTE returns a column >= value predicate.
func GTE(col string, v any) *Predicate { return binary(col, ">=", v) }

// LT returns a column < value predicate.
func LT(col string, v any) *Predicate { return binary(col, "<", v) }

// LTE returns a column <= value predicate.
func LTE(col string, v any) *Predicate { return binary(col, "<=", v) }

// Like returns a column LIKE pattern predicate.
func Like(col, pattern string) *Predicate { return binary(col, "LIKE", pattern) }

// Contains returns a substring-match predicate.
func Contains(col, sub string) *Predicate { return Like(col, "%"+sub+"%") }

// HasPrefix returns a prefix-match predicate.
func HasPrefix(col, prefix string) *Predicate { return Like(col, prefix+"%") }

// HasSuffix returns a suffix-match predicate.
func HasSuffix(col, suffix string) *Predicate { return Like(col, "%"+suffix) }

// Regexp returns a native regular-expression match predicate: ~ on
// Postgres, REGEXP elsewhere.
func Regexp(col, pattern string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		if b.dialect == dialect.Postgres {
			b.WriteString(" ~ ")
		} else {
			b.WriteString(" REGEXP ")
		}
		b.Arg(pattern)
	})
}

func membership(col, op string, vs []any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" " + op + " (")
		b.Args(vs...)
		b.WriteString(")")
	})
}

// In returns a column IN (values...) predicate.
func In(col string, vs ...any) *Predicate { return membership(col, "IN", vs) }

// NotIn returns a column NOT IN (values...) predicate.
func NotIn(col string, vs ...any) *Predicate { return membership(col, "NOT IN", vs) }

func ranged(col, op string, lo, hi any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" " + op + " ")
		b.Arg(lo)
		b.WriteString(" AND ")
		b.Arg(hi)
	})
}

// Between returns a column BETWEEN lo AND hi predicate.
func Between(col string, lo, hi any) *Predicate { return ranged(col, "BETWEEN", lo, hi) }

// NotBetween returns a column NOT BETWEEN lo AND hi predicate.
func NotBetween(col string, lo, hi any) *Predicate { return ranged(col, "NOT BETWEEN", lo, hi) }

// IsNull returns a column IS NULL predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IS NULL")
	})
}

// NotNull returns a column IS NOT NULL predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col)
		b.WriteString(" IS NOT NULL")
	})
}

// ExprP embeds verbatim statement text with positional bind values.
func ExprP(expr string, args ...any) *Predicate {
	return P(func(b *Builder) {
		b.WriteString(expr)
		b.args = append(b.args, args...)
	})
}
