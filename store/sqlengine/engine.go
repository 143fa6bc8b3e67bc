package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine/internal/adapters"
)

// Supported SQL dialects, named like the goqu dialects they select.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
	DialectMySQL    = "mysql"
)

const (
	defaultBooksTable        = "books"
	defaultStudentsTable     = "students"
	defaultTransactionsTable = "transactions"
	defaultAdminsTable       = "admins"

	logMsgBuildQueryFailed   = "failed to build sql statement"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgBeginTxFailed      = "failed to begin database transaction"
	logMsgCommitTxFailed     = "failed to commit database transaction"
	logMsgRollbackTxFailed   = "failed to roll back database transaction"
	logMsgTxRolledBack       = "unit of work rolled back"
	logMsgSchemaMigrated     = "schema migrated"
	logMsgNotApplied         = "conditional update not applied"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "store operation: "
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrAction            = "action"
	logAttrDurationMS        = "duration_ms"
	logAttrRowsAffected      = "rows_affected"
	logAttrDialect           = "dialect"
	logAttrStatements        = "statements"
)

type tableNames struct {
	books        string
	students     string
	transactions string
	admins       string
}

// Engine is the SQL implementation of store.Inventory, store.Ledger and store.UnitOfWork.
// Methods called directly on the Engine run in autocommit mode, use WithinTx for atomic multi-step changes.
type Engine struct {
	db               adapters.DBAdapter
	dialect          string
	tables           tableNames
	logger           store.Logger
	contextualLogger store.ContextualLogger
	metricsCollector store.MetricsCollector
	tracingCollector store.TracingCollector
}

// sqlBuilder is satisfied by all goqu datasets.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
// Use WithDialect when the sql.DB is not connected to PostgreSQL.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, store.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options)
}

func newEngine(db adapters.DBAdapter, options []Option) (Engine, error) {
	e := Engine{
		db:      db,
		dialect: DialectPostgres,
		tables: tableNames{
			books:        defaultBooksTable,
			students:     defaultStudentsTable,
			transactions: defaultTransactionsTable,
			admins:       defaultAdminsTable,
		},
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Engine{}, err
		}
	}

	return e, nil
}

// Dialect returns the SQL dialect the engine generates statements for.
func (e Engine) Dialect() string {
	return e.dialect
}

// Ping verifies that the database is reachable.
func (e Engine) Ping(ctx context.Context) error {
	if err := e.db.Ping(ctx); err != nil {
		return errors.Join(store.ErrQueryingFailed, err)
	}

	return nil
}

// WithinTx runs fn inside one database transaction.
// If fn returns an error, or the context is canceled before the commit, nothing fn wrote is kept.
func (e Engine) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tracing, ctx := e.startTxTracing(ctx)
	start := time.Now()

	dbTx, beginErr := e.db.BeginTx(ctx)
	if beginErr != nil {
		e.logErrorContext(ctx, logMsgBeginTxFailed, beginErr)
		e.recordErrorMetricsContext(ctx, operationTx, errorTypeBeginTx)
		tracing.finishError(errorTypeBeginTx, time.Since(start))

		return errors.Join(store.ErrTransactionFailed, beginErr)
	}

	if fnErr := fn(ctx, session{engine: e, x: dbTx}); fnErr != nil {
		if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			e.logWarnContext(ctx, logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
		}

		e.logOperationContext(ctx, logMsgTxRolledBack, logAttrError, fnErr.Error())
		tracing.finishRolledBack(time.Since(start))

		return fnErr
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		e.logErrorContext(ctx, logMsgCommitTxFailed, commitErr)
		e.recordErrorMetricsContext(ctx, operationTx, errorTypeCommitTx)
		tracing.finishError(errorTypeCommitTx, time.Since(start))

		return errors.Join(store.ErrTransactionFailed, commitErr)
	}

	tracing.finishSuccess(time.Since(start))

	return nil
}

// direct returns a session that runs each statement in autocommit mode.
func (e Engine) direct() session {
	return session{engine: e, x: e.db}
}

func (e Engine) builder() goqu.DialectWrapper {
	return goqu.Dialect(e.dialect)
}

// session runs statements on one executor: the pool, or an open transaction.
type session struct {
	engine Engine
	x      adapters.DBExecutor
}

// query builds the statement and executes it as a query. The caller must close the returned rows.
func (s session) query(ctx context.Context, action string, stmt sqlBuilder) (adapters.DBRows, error) {
	e := s.engine

	sqlQuery, args, buildErr := stmt.ToSQL()
	if buildErr != nil {
		e.logErrorContext(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return nil, errors.Join(store.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := s.x.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDurationContext(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		e.logErrorContext(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		e.recordDurationMetricsContext(ctx, metricQueryDuration, duration, action, statusError)
		e.recordErrorMetricsContext(ctx, action, classifyError(queryErr))

		return nil, errors.Join(store.ErrQueryingFailed, queryErr)
	}

	e.recordDurationMetricsContext(ctx, metricQueryDuration, duration, action, statusSuccess)

	return rows, nil
}

// exec builds the statement, executes it and returns the number of affected rows.
// Unique key violations are reported as store.ErrDuplicateKey.
func (s session) exec(ctx context.Context, action string, stmt sqlBuilder) (int64, error) {
	e := s.engine

	sqlQuery, args, buildErr := stmt.ToSQL()
	if buildErr != nil {
		e.logErrorContext(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return 0, errors.Join(store.ErrBuildingQueryFailed, buildErr)
	}

	return s.execSQL(ctx, action, sqlQuery, args...)
}

func (s session) execSQL(ctx context.Context, action string, sqlQuery string, args ...any) (int64, error) {
	e := s.engine

	start := time.Now()
	result, execErr := s.x.Exec(ctx, sqlQuery, args...)
	duration := time.Since(start)
	e.logQueryWithDurationContext(ctx, sqlQuery, action, duration)

	if execErr != nil {
		errorType := classifyError(execErr)
		e.recordDurationMetricsContext(ctx, metricExecDuration, duration, action, statusError)
		e.recordErrorMetricsContext(ctx, action, errorType)

		if errorType == errorTypeUniqueViolation {
			return 0, errors.Join(store.ErrDuplicateKey, execErr)
		}

		e.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, errors.Join(store.ErrExecutingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		e.logErrorContext(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(store.ErrExecutingFailed, rowsAffectedErr)
	}

	e.recordDurationMetricsContext(ctx, metricExecDuration, duration, action, statusSuccess)

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s session) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.engine.logWarnContext(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// collect scans all rows with scan and closes them.
func collect[T any](ctx context.Context, s session, rows adapters.DBRows, scan func(adapters.DBRows) (T, error)) ([]T, error) {
	defer s.closeRows(ctx, rows)

	items := make([]T, 0)

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			s.engine.logErrorContext(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(store.ErrScanningRowFailed, scanErr)
		}

		items = append(items, item)
	}

	if iterErr := rows.Err(); iterErr != nil {
		s.engine.logErrorContext(ctx, logMsgDBQueryFailed, iterErr)
		return nil, errors.Join(store.ErrQueryingFailed, iterErr)
	}

	return items, nil
}

// first returns the single row a lookup selected, or store.ErrRecordNotFound.
func first[T any](ctx context.Context, s session, rows adapters.DBRows, scan func(adapters.DBRows) (T, error)) (T, error) {
	var empty T

	items, err := collect(ctx, s, rows, scan)
	if err != nil {
		return empty, err
	}

	if len(items) == 0 {
		return empty, store.ErrRecordNotFound
	}

	return items[0], nil
}

// count runs a single-value aggregate statement.
func (s session) count(ctx context.Context, action string, stmt sqlBuilder) (int, error) {
	rows, err := s.query(ctx, action, stmt)
	if err != nil {
		return 0, err
	}

	value, err := first(ctx, s, rows, func(r adapters.DBRows) (int64, error) {
		var v int64
		err := r.Scan(&v)
		return v, err
	})
	if err != nil {
		return 0, err
	}

	return int(value), nil
}

var (
	_ store.UnitOfWork = Engine{}
	_ store.Inventory  = Engine{}
	_ store.Ledger     = Engine{}
	_ store.Tx         = session{}
)
