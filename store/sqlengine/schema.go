package sqlengine

import (
	"context"
	"fmt"
)

// Migrate creates the tables and indexes if they do not exist yet. It is safe to run on every start.
func (e Engine) Migrate(ctx context.Context) error {
	statements := e.schemaStatements()
	s := e.direct()

	for _, statement := range statements {
		if _, err := s.execSQL(ctx, actionMigrate, statement); err != nil {
			return err
		}
	}

	e.logOperationContext(ctx, logMsgSchemaMigrated, logAttrDialect, e.dialect, logAttrStatements, len(statements))

	return nil
}

func (e Engine) schemaStatements() []string {
	t := e.tables

	switch e.dialect {
	case DialectMySQL:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(64) PRIMARY KEY,
	barcode VARCHAR(64) NOT NULL UNIQUE,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	category TEXT NOT NULL,
	cover_image TEXT NOT NULL,
	available INT NOT NULL,
	total_copies INT NOT NULL,
	CHECK (available >= 0),
	CHECK (total_copies >= 1),
	CHECK (available <= total_copies)
)`, t.books),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(64) PRIMARY KEY,
	barcode VARCHAR(64) NOT NULL UNIQUE,
	name TEXT NOT NULL,
	student_class TEXT NOT NULL,
	profile_pic TEXT NOT NULL,
	active BOOLEAN NOT NULL,
	stars INT NOT NULL,
	badges TEXT NOT NULL,
	books_read INT NOT NULL,
	CHECK (stars >= 0),
	CHECK (books_read >= 0)
)`, t.students),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	id VARCHAR(64) PRIMARY KEY,
	student_barcode VARCHAR(64) NOT NULL,
	student_name TEXT NOT NULL,
	book_barcode VARCHAR(64) NOT NULL,
	book_title TEXT NOT NULL,
	borrow_date DATETIME(6) NOT NULL,
	due_date DATETIME(6) NOT NULL,
	return_date DATETIME(6) NULL,
	status VARCHAR(16) NOT NULL,
	overdue_days INT NOT NULL,
	CHECK (status IN ('borrowed', 'returned')),
	CHECK (overdue_days >= 0),
	INDEX %[1]s_open_idx (status, student_barcode, book_barcode)
)`, t.transactions),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id VARCHAR(64) PRIMARY KEY,
	username VARCHAR(128) NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
)`, t.admins),
		}

	default:
		timestamp := "TIMESTAMPTZ"
		if e.dialect == DialectSQLite {
			timestamp = "TIMESTAMP"
		}

		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	barcode TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	cover_image TEXT NOT NULL DEFAULT '',
	available INTEGER NOT NULL CHECK (available >= 0),
	total_copies INTEGER NOT NULL CHECK (total_copies >= 1),
	CHECK (available <= total_copies)
)`, t.books),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	barcode TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	student_class TEXT NOT NULL,
	profile_pic TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	stars INTEGER NOT NULL DEFAULT 0 CHECK (stars >= 0),
	badges TEXT NOT NULL DEFAULT '[]',
	books_read INTEGER NOT NULL DEFAULT 0 CHECK (books_read >= 0)
)`, t.students),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	student_barcode TEXT NOT NULL,
	student_name TEXT NOT NULL,
	book_barcode TEXT NOT NULL,
	book_title TEXT NOT NULL,
	borrow_date %[2]s NOT NULL,
	due_date %[2]s NOT NULL,
	return_date %[2]s NULL,
	status TEXT NOT NULL CHECK (status IN ('borrowed', 'returned')),
	overdue_days INTEGER NOT NULL DEFAULT 0 CHECK (overdue_days >= 0)
)`, t.transactions, timestamp),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_open_idx ON %[1]s (status, student_barcode, book_barcode)`, t.transactions),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
)`, t.admins),
		}
	}
}
