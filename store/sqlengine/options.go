package sqlengine

import (
	"github.com/readingcorner/library-circulation/store"
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithDialect sets the SQL dialect statements are generated for: "postgres" (default), "sqlite3" or "mysql".
func WithDialect(dialect string) Option {
	return func(e *Engine) error {
		switch dialect {
		case DialectPostgres, DialectSQLite, DialectMySQL:
			e.dialect = dialect
			return nil

		default:
			return store.ErrUnsupportedDialect
		}
	}
}

// WithTablePrefix prepends prefix to all table names, e.g. to run isolated tests in one schema.
func WithTablePrefix(prefix string) Option {
	return func(e *Engine) error {
		if prefix == "" {
			return store.ErrEmptyTableName
		}

		e.tables = tableNames{
			books:        prefix + defaultBooksTable,
			students:     prefix + defaultStudentsTable,
			transactions: prefix + defaultTransactionsTable,
			admins:       prefix + defaultAdminsTable,
		}

		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: migrations, units of work that were rolled back
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger store.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// It receives statement durations and database error counts.
func WithMetrics(collector store.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// Every unit of work started with WithinTx gets its own span.
func WithTracing(collector store.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// When set it is preferred over the plain logger, so that log records carry trace and span ids.
func WithContextualLogger(logger store.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}
