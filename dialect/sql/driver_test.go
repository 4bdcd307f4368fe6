package sql

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/dialect"
)

func TestDriverDialect(t *testing.T) {
	t.Parallel()

	for configured, want := range map[string]string{
		"mysql":    dialect.MySQL,
		"sqlite3":  dialect.SQLite,
		"postgres": dialect.Postgres,
		"custom":   "custom",
	} {
		d := NewDriver(configured, Conn{})
		assert.Equal(t, want, d.Dialect())
	}
}

func TestConnQuery(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT `id` FROM `beetles`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	drv := OpenDB(dialect.MySQL, db)
	var rows Rows
	require.NoError(t, drv.Query(context.Background(), "SELECT `id` FROM `beetles`", []any{}, &rows))
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Destination and args types are checked up front.
	assert.Error(t, drv.Query(context.Background(), "SELECT 1", []any{}, nil))
	assert.Error(t, drv.Query(context.Background(), "SELECT 1", "not a slice", &rows))
}

func TestConnExec(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM `beetles`").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	drv := OpenDB(dialect.MySQL, db)
	var res Result
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM `beetles` WHERE `id` = ?", []any{7}, &res))
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, drv.Exec(context.Background(), "DELETE", []any{}, "bad dest"))
}

func TestDriverTx(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `beetles`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	drv := OpenDB(dialect.MySQL, db)
	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "UPDATE `beetles` SET `color` = ?", []any{"red"}, nil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsDriver(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("BROKEN").WillReturnError(assert.AnError)

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.MySQL, db),
		WithSlowThreshold(-1), // everything counts as slow
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	var rows Rows
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, &rows))
	rows.Close()
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM x", []any{}, nil))
	require.Error(t, drv.Exec(context.Background(), "BROKEN", []any{}, nil))

	snap := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, int64(2), snap.TotalExecs)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(3), snap.SlowQueries)
	assert.Len(t, slow, 3)
	assert.Contains(t, snap.String(), "queries=1")

	drv.QueryStats().Reset()
	assert.Zero(t, drv.QueryStats().Stats().TotalQueries)
}

func TestStatsSnapshot_AvgDuration(t *testing.T) {
	t.Parallel()

	assert.Zero(t, StatsSnapshot{}.AvgDuration())
	snap := StatsSnapshot{TotalQueries: 2, TotalExecs: 2, TotalDuration: 4 * time.Second}
	assert.Equal(t, time.Second, snap.AvgDuration())
}
