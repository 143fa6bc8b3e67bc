// Package adapters provide database adapter implementations for the SQL engine.
//
// The engine can run on top of pgxpool.Pool, sql.DB or sqlx.DB. Each adapter presents the
// same DBAdapter interface for statement execution and for opening transactions, so the
// engine code above it does not care which library owns the connection.
package adapters
