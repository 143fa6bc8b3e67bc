package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/store/sqlengine"
)

// PostgresDSNEnv names the environment variable that enables the PostgreSQL variants of the tests.
const PostgresDSNEnv = "CIRCULATION_TEST_POSTGRES_DSN"

// SQLiteDSN returns a DSN for a fresh shared-cache in-memory database.
func SQLiteDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
}

// OpenSQLite opens a fresh in-memory database that lives until the test ends.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", SQLiteDSN())
	require.NoError(t, err, "error opening sqlite in test setup")

	// one connection keeps the in-memory database alive and serializes writers like a real lock would
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewSQLiteEngine creates a migrated engine on a fresh in-memory database, using the sql.DB adapter.
func NewSQLiteEngine(t testing.TB, options ...sqlengine.Option) sqlengine.Engine {
	t.Helper()

	options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
	engine, err := sqlengine.NewEngineFromSQLDB(OpenSQLite(t), options...)
	require.NoError(t, err, "error creating engine in test setup")

	migrate(t, engine)

	return engine
}

// NewSQLiteEngineWithSQLX is NewSQLiteEngine on the sqlx adapter.
func NewSQLiteEngineWithSQLX(t testing.TB, options ...sqlengine.Option) sqlengine.Engine {
	t.Helper()

	db := sqlx.NewDb(OpenSQLite(t), "sqlite3")

	options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
	engine, err := sqlengine.NewEngineFromSQLX(db, options...)
	require.NoError(t, err, "error creating engine in test setup")

	migrate(t, engine)

	return engine
}

// NewPostgresEngine creates a migrated engine on the pgx pool, with table names unique to this test.
func NewPostgresEngine(t testing.TB) sqlengine.Engine {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", PostgresDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "error connecting to DB pool in test setup")

	prefix := "t" + uuid.NewString()[:8] + "_"
	engine, err := sqlengine.NewEngineFromPGXPool(pool, sqlengine.WithTablePrefix(prefix))
	require.NoError(t, err, "error creating engine in test setup")

	migrate(t, engine)

	t.Cleanup(func() {
		for _, table := range []string{"transactions", "books", "students", "admins"} {
			_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+prefix+table)
		}

		pool.Close()
	})

	return engine
}

func migrate(t testing.TB, engine sqlengine.Engine) {
	t.Helper()

	require.NoError(t, engine.Migrate(context.Background()), "error migrating schema in test setup")
}
