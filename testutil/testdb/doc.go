// Package testdb creates migrated sqlengine.Engine instances for tests.
//
// NewSQLiteEngine works everywhere, every call gets its own in-memory database.
// NewPostgresEngine needs a running PostgreSQL and skips the test unless
// CIRCULATION_TEST_POSTGRES_DSN is set.
package testdb
