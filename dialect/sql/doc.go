// Package sql provides the statement builders and the database/sql driver
// shell the engine executes through.
//
// Builders render per dialect: identifier quoting is backticks on MySQL
// and SQLite and double quotes on Postgres, placeholders are ? except $n
// on Postgres.
//
//	stmt, args := sql.Dialect(dialect.Postgres).
//		Select("id", "color").
//		From(sql.Table("beetles")).
//		Where(sql.NotIn("num_spots", 1, 3, 5, 7)).
//		OrderBy("id").
//		Limit(10).
//		Query()
//
// Predicates are plain values and compose with And, Or and Not; the same
// predicate renders correctly under every dialect.
package sql
