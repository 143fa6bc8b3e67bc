package store

import (
	"errors"
)

var (
	// ErrRecordNotFound is returned when no book, student, loan or admin matches the given key.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a record with the same barcode or username already exists.
	ErrDuplicateKey = errors.New("record with the same key already exists")

	// ErrNilDatabaseConnection is returned when a constructor receives a nil database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when a table name option receives an empty string.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrUnsupportedDialect is returned for SQL dialects the engine cannot generate statements for.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	// ErrBuildingQueryFailed is returned when a statement could not be generated.
	ErrBuildingQueryFailed = errors.New("building the sql statement failed")

	// ErrQueryingFailed is returned when the database rejected or aborted a read.
	ErrQueryingFailed = errors.New("querying the database failed")

	// ErrExecutingFailed is returned when the database rejected or aborted a write.
	ErrExecutingFailed = errors.New("executing the sql statement failed")

	// ErrScanningRowFailed is returned when a result row does not match the expected columns.
	ErrScanningRowFailed = errors.New("scanning a database row failed")

	// ErrTransactionFailed is returned when a unit of work could not be started, committed or rolled back.
	ErrTransactionFailed = errors.New("database transaction failed")
)
