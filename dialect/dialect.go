// Package dialect defines the database abstraction the engine executes
// through: dialect names, the Driver/Tx contract, and a logging wrapper.
package dialect

import (
	"context"
	"log/slog"
	"time"
)

// Supported dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations the engine performs.
// The args parameter is always a []any of bind values; v receives the
// result (nil, *sql.Result or *sql.Rows depending on the call).
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal connection surface a database must provide.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction. The engine itself never
	// opens one; callers needing atomicity across statements do.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name.
	Dialect() string
}

// Tx is a transaction-scoped ExecQuerier.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// DebugDriver wraps a Driver and logs every statement with its bind values
// before delegating.
type DebugDriver struct {
	Driver
	log *slog.Logger
}

// Debug returns a Driver that logs statements through logger at Debug
// level. A nil logger uses slog.Default.
func Debug(d Driver, logger *slog.Logger) Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebugDriver{Driver: d, log: logger}
}

// Exec logs the statement and delegates.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "exec",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Query logs the statement and delegates.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.log.LogAttrs(ctx, slog.LevelDebug, "query",
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("elapsed", time.Since(start)),
	)
	return err
}

// Tx starts a transaction whose statements log through the same logger.
func (d *DebugDriver) Tx(ctx context.Context) (Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &debugTx{Tx: tx, log: d.log}, nil
}

type debugTx struct {
	Tx
	log *slog.Logger
}

func (t *debugTx) Exec(ctx context.Context, query string, args, v any) error {
	t.log.LogAttrs(ctx, slog.LevelDebug, "tx exec", slog.String("query", query), slog.Any("args", args))
	return t.Tx.Exec(ctx, query, args, v)
}

func (t *debugTx) Query(ctx context.Context, query string, args, v any) error {
	t.log.LogAttrs(ctx, slog.LevelDebug, "tx query", slog.String("query", query), slog.Any("args", args))
	return t.Tx.Query(ctx, query, args, v)
}
