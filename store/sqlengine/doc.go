// Package sqlengine implements the store interfaces on top of a relational database.
//
// It supports three connection types (pgxpool.Pool, sql.DB, sqlx.DB) through internal adapters
// and generates every statement with goqu for the postgres, sqlite3 or mysql dialect.
// All statements are prepared, values never end up inlined in the SQL text.
//
// Counter updates are conditional: UpdateBookAvailable only succeeds if the new value stays
// within 0..total_copies, UpdateTransaction only succeeds on a loan that is still open.
// Both report a failed condition as (false, nil) so that the caller can turn it into a
// business rejection inside its unit of work.
//
// Usage:
//
//	engine, err := sqlengine.NewEngineFromPGXPool(pool, sqlengine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	if err := engine.Migrate(ctx); err != nil {
//		return err
//	}
package sqlengine
