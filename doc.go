// Package strata is the core of a data-mapper style ORM: a property
// metadata system and a query-to-SQL translation engine.
//
// A model declares its fields once, as property descriptors
// (see schema/field); the compiled schema.Set owns the field-level
// semantics (defaults, dirty tracking, lazy loading, index derivation).
// A declarative query value (see query) is translated by the adapter
// package into parameterized SQL through the dialect/sql builders and
// executed against any database/sql driver.
//
// The entity layer itself is a consumer of this package: the gen package
// emits a static, typed struct per model that embeds schema.State and
// delegates field access to the property protocol.
//
// Basic usage:
//
//	set, err := schema.Compile("beetle",
//		field.Int("id").Key().Serial(),
//		field.Text("color"),
//		field.Int("num_spots").Nullable(),
//	)
//	...
//	drv, err := sql.Open(dialect.SQLite, "file:ent?mode=memory&_pragma=foreign_keys(1)")
//	...
//	a := adapter.New(drv)
//	cur, err := a.Read(ctx, query.New(set).Where(query.Not("num_spots", []any{1, 3, 5, 7})))
package strata
