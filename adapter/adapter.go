// Package adapter translates declarative queries into parameterized SQL
// and executes them: the translation engine (translate.go) and the
// execution shell live here. The shell owns no connection state beyond the
// driver handle; every operation acquires, uses and releases a connection
// within one call, and execution failures are logged and returned
// unchanged, never downgraded or retried.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	strata "github.com/strata-db/strata"
	"github.com/strata-db/strata/dialect"
	"github.com/strata-db/strata/dialect/sql"
	"github.com/strata-db/strata/query"
	"github.com/strata-db/strata/schema"
)

// A Constructor builds a live entity from a decoded attribute vector. The
// names align positionally with values and with the compiled SELECT's
// column order; q is the originating query.
type Constructor func(q *query.Query, names []string, values []any) (schema.Entity, error)

// A Record is the default entity shape: bare slot state with no generated
// accessors. The gen package emits typed replacements.
type Record struct {
	*schema.State
}

// Adapter executes declarative queries against one driver.
type Adapter struct {
	drv       dialect.Driver
	t         *Translator
	log       *slog.Logger
	construct Constructor
}

// An Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for execution failures and debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithConstructor replaces the default Record constructor.
func WithConstructor(c Constructor) Option {
	return func(a *Adapter) { a.construct = c }
}

// New returns an adapter over drv.
func New(drv dialect.Driver, opts ...Option) *Adapter {
	a := &Adapter{
		drv: drv,
		t:   NewTranslator(drv.Dialect()),
		log: slog.Default(),
	}
	a.construct = a.newRecord
	for _, o := range opts {
		o(a)
	}
	return a
}

// Translator returns the adapter's statement compiler.
func (a *Adapter) Translator() *Translator { return a.t }

func (a *Adapter) newRecord(q *query.Query, names []string, values []any) (schema.Entity, error) {
	r := &Record{State: schema.NewState(q.Model)}
	if err := r.Materialize(names, values); err != nil {
		return nil, err
	}
	return r, nil
}

// Create persists the entities in order and returns how many saved. A
// store-assigned identity is read back through a RETURNING clause where
// the dialect supports one, and from the last-insert-id channel otherwise;
// either way the identity slot is populated before Create returns.
func (a *Adapter) Create(ctx context.Context, entities ...schema.Entity) (int, error) {
	for n, e := range entities {
		if err := a.createOne(ctx, e); err != nil {
			return n, err
		}
	}
	return len(entities), nil
}

func (a *Adapter) createOne(ctx context.Context, e schema.Entity) error {
	st := e.EntityState()
	set := st.Schema()
	stmt, args, returning, err := a.t.Insert(set, e)
	if err != nil {
		return err
	}
	id := Identity(set)
	switch {
	case returning != "":
		rows := &sql.Rows{}
		if err := a.drv.Query(ctx, stmt, args, rows); err != nil {
			return a.fail(ctx, stmt, err)
		}
		var assigned int64
		if rows.Next() {
			if err := rows.Scan(&assigned); err != nil {
				rows.Close()
				return a.fail(ctx, stmt, err)
			}
		}
		if err := rows.Close(); err != nil {
			return a.fail(ctx, stmt, err)
		}
		id.Set(e, assigned)
	default:
		var res sql.Result
		if err := a.drv.Exec(ctx, stmt, args, &res); err != nil {
			return a.fail(ctx, stmt, err)
		}
		if id != nil {
			if v, _ := id.Get(e); v == nil {
				assigned, err := res.LastInsertId()
				if err != nil {
					return a.fail(ctx, stmt, err)
				}
				id.Set(e, assigned)
			}
		}
	}
	st.Sync()
	a.installLoader(e)
	return nil
}

// Read compiles and executes a SELECT and returns a lazy, single-pass
// cursor; rows decode into entities as the cursor advances. The caller
// must close the cursor unless it drains it.
func (a *Adapter) Read(ctx context.Context, q *query.Query) (*Cursor, error) {
	stmt, args, names, err := a.t.Select(q)
	if err != nil {
		return nil, err
	}
	props := make([]*schema.Property, len(names))
	for i, n := range names {
		props[i] = q.Model.MustGet(n)
	}
	rows := &sql.Rows{}
	if err := a.drv.Query(ctx, stmt, args, rows); err != nil {
		return nil, a.fail(ctx, stmt, err)
	}
	return &Cursor{a: a, q: q, rows: rows, names: names, props: props}, nil
}

// Update applies the attribute assignments to every row matching q and
// returns the affected-row count.
func (a *Adapter) Update(ctx context.Context, attrs map[string]any, q *query.Query) (int64, error) {
	stmt, args, err := a.t.Update(attrs, q)
	if err != nil {
		return 0, err
	}
	return a.exec(ctx, stmt, args)
}

// Delete removes every row matching q and returns the affected-row count.
func (a *Adapter) Delete(ctx context.Context, q *query.Query) (int64, error) {
	stmt, args, err := a.t.Delete(q)
	if err != nil {
		return 0, err
	}
	return a.exec(ctx, stmt, args)
}

func (a *Adapter) exec(ctx context.Context, stmt string, args []any) (int64, error) {
	var res sql.Result
	if err := a.drv.Exec(ctx, stmt, args, &res); err != nil {
		return 0, a.fail(ctx, stmt, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, a.fail(ctx, stmt, err)
	}
	return affected, nil
}

// Execute runs a raw statement and returns the driver-native result.
func (a *Adapter) Execute(ctx context.Context, stmt string, binds ...any) (sql.Result, error) {
	var res sql.Result
	if err := a.drv.Exec(ctx, stmt, binds, &res); err != nil {
		return nil, a.fail(ctx, stmt, err)
	}
	return res, nil
}

// A Row is one decoded multi-column result of Query, keyed by column
// name.
type Row map[string]any

// Query runs a raw row-returning statement. Single-column results
// collapse to bare values; multi-column results become Row records.
func (a *Adapter) Query(ctx context.Context, stmt string, binds ...any) (_ []any, rerr error) {
	rows := &sql.Rows{}
	if err := a.drv.Query(ctx, stmt, binds, rows); err != nil {
		return nil, a.fail(ctx, stmt, err)
	}
	defer func() {
		if err := rows.Close(); rerr == nil {
			rerr = err
		}
	}()
	cols, err := rows.Columns()
	if err != nil {
		return nil, a.fail(ctx, stmt, err)
	}
	var out []any
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, a.fail(ctx, stmt, err)
		}
		if len(cols) == 1 {
			out = append(out, raw[0])
			continue
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			r[c] = raw[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, a.fail(ctx, stmt, err)
	}
	return out, nil
}

// fail logs an execution failure and returns it unchanged. Retrying, if
// any, belongs to the caller.
func (a *Adapter) fail(ctx context.Context, stmt string, err error) error {
	a.log.LogAttrs(ctx, slog.LevelError, "execution failed",
		slog.String("query", stmt),
		slog.String("error", err.Error()),
	)
	return err
}

// installLoader wires the entity's lazy-load hook: one round trip fetches
// a whole loading context, keyed by the entity's identity tuple.
func (a *Adapter) installLoader(e schema.Entity) {
	st := e.EntityState()
	set := st.Schema()
	st.SetLoader(func(names []string) error {
		key := set.Key()
		if len(key) == 0 {
			return strata.NewUsageError("lazy load", errors.New("model "+set.Model()+" has no key"))
		}
		q := query.New(set).Select(names...)
		for _, kp := range key {
			v, err := kp.Get(e)
			if err != nil {
				return err
			}
			q.Where(query.Eql(kp.Name(), v))
		}
		stmt, args, _, err := a.t.Select(q)
		if err != nil {
			return err
		}
		rows := &sql.Rows{}
		ctx := context.Background()
		if err := a.drv.Query(ctx, stmt, args, rows); err != nil {
			return a.fail(ctx, stmt, err)
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return a.fail(ctx, stmt, err)
			}
			return fmt.Errorf("%w: %s", strata.ErrNotPersisted, set.Model())
		}
		raw := make([]any, len(names))
		dest := make([]any, len(names))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return a.fail(ctx, stmt, err)
		}
		values := make([]any, len(names))
		for i, n := range names {
			if values[i], err = set.MustGet(n).Decode(raw[i]); err != nil {
				return err
			}
		}
		return st.Materialize(names, values)
	})
}

// Cursor is the lazy result sequence of Read: single-pass, non-restartable,
// decoding one row per Next.
type Cursor struct {
	a     *Adapter
	q     *query.Query
	rows  *sql.Rows
	names []string
	props []*schema.Property
	cur   schema.Entity
	err   error
	done  bool
}

// Next advances to the next entity. It returns false at the end of the
// result set or on the first error; the cursor closes itself either way.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if !c.rows.Next() {
		c.finish(c.rows.Err())
		return false
	}
	raw := make([]any, len(c.props))
	dest := make([]any, len(c.props))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := c.rows.Scan(dest...); err != nil {
		c.finish(err)
		return false
	}
	values := make([]any, len(c.props))
	for i, p := range c.props {
		v, err := p.Decode(raw[i])
		if err != nil {
			c.finish(err)
			return false
		}
		values[i] = v
	}
	e, err := c.a.construct(c.q, c.names, values)
	if err != nil {
		c.finish(err)
		return false
	}
	c.a.installLoader(e)
	c.cur = e
	return true
}

// Entity returns the entity decoded by the last successful Next.
func (c *Cursor) Entity() schema.Entity { return c.cur }

// Err returns the first error the cursor hit.
func (c *Cursor) Err() error { return c.err }

// Close releases the underlying rows. It is safe to call twice.
func (c *Cursor) Close() error {
	if c.done {
		return nil
	}
	c.finish(nil)
	return c.err
}

func (c *Cursor) finish(err error) {
	if c.done {
		return
	}
	c.done = true
	cerr := c.rows.Close()
	if err == nil {
		err = cerr
	}
	c.err = err
}

// All drains the cursor and returns every remaining entity.
func (c *Cursor) All() ([]schema.Entity, error) {
	var out []schema.Entity
	for c.Next() {
		out = append(out, c.Entity())
	}
	return out, c.Err()
}
