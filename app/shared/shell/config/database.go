package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/readingcorner/library-circulation/store/sqlengine"
)

const (
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
)

// ErrOpeningDatabaseFailed is returned when a connection pool cannot be created from the configuration.
var ErrOpeningDatabaseFailed = errors.New("opening database failed")

// Database is an open connection pool together with the SQL engine on top of it.
type Database struct {
	Engine sqlengine.Engine
	close  func() error
}

// Close releases the connection pool.
func (d *Database) Close() error {
	if d == nil || d.close == nil {
		return nil
	}

	return d.close()
}

// OpenDatabase creates the connection pool the configuration selects and the engine on top of it.
// It does not connect yet: callers ping the engine, usually with retry.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig, options ...sqlengine.Option) (*Database, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, options)

	case DriverSQLite:
		db, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)

		return newDatabase(db.Close, func() (sqlengine.Engine, error) {
			return sqlengine.NewEngineFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))...)
		})

	case DriverMySQL:
		dsn, err := MySQLDSN(cfg.DSN, cfg.ConnectTimeout)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		configurePool(db, cfg)

		return newDatabase(db.Close, func() (sqlengine.Engine, error) {
			return sqlengine.NewEngineFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectMySQL))...)
		})

	default:
		return nil, fmt.Errorf("%w: database.driver %q", ErrInvalidConfig, cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg DatabaseConfig, options []sqlengine.Option) (*Database, error) {
	options = append(options, sqlengine.WithDialect(sqlengine.DialectPostgres))

	switch cfg.Adapter {
	case AdapterSQL:
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		configurePool(db, cfg)

		return newDatabase(db.Close, func() (sqlengine.Engine, error) {
			return sqlengine.NewEngineFromSQLDB(db, options...)
		})

	case AdapterSQLX:
		db, err := sqlx.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		configurePool(db.DB, cfg)

		return newDatabase(db.Close, func() (sqlengine.Engine, error) {
			return sqlengine.NewEngineFromSQLX(db, options...)
		})

	default:
		poolConfig, err := PGXPoolConfig(cfg)
		if err != nil {
			return nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, errors.Join(ErrOpeningDatabaseFailed, err)
		}

		return newDatabase(func() error { pool.Close(); return nil }, func() (sqlengine.Engine, error) {
			return sqlengine.NewEngineFromPGXPool(pool, options...)
		})
	}
}

// PGXPoolConfig creates a pgxpool.Config from the database configuration.
func PGXPoolConfig(cfg DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // small, validated pool sizes
	poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // small, validated pool sizes
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	poolConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return poolConfig, nil
}

// MySQLDSN adds the parameters the engine relies on to a MySQL DSN: times are parsed into time.Time
// in UTC, and affected rows count matched rows, so a conditional update that rewrites equal values still reports success.
func MySQLDSN(dsn string, connectTimeout time.Duration) (string, error) {
	mysqlConfig, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}

	mysqlConfig.ParseTime = true
	mysqlConfig.ClientFoundRows = true
	mysqlConfig.Loc = time.UTC
	mysqlConfig.Timeout = connectTimeout

	return mysqlConfig.FormatDSN(), nil
}

func configurePool(db *sql.DB, cfg DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

func newDatabase(closeFn func() error, newEngine func() (sqlengine.Engine, error)) (*Database, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, errors.Join(err, closeFn())
	}

	return &Database{Engine: engine, close: closeFn}, nil
}
