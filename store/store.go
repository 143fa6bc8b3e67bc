package store

import (
	"context"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

// Inventory exposes the book and student lookups and the counter updates owned by the loan and reward engines.
type Inventory interface {
	FindBook(ctx context.Context, barcode core.BarcodeString) (core.Book, error)
	FindStudent(ctx context.Context, barcode core.BarcodeString) (core.Student, error)

	// FindStudentForUpdate is FindStudent that also locks the row until the unit of work ends,
	// so that read-modify-write of the reader stats cannot interleave. Outside a unit of work it is FindStudent.
	FindStudentForUpdate(ctx context.Context, barcode core.BarcodeString) (core.Student, error)

	// UpdateBookAvailable moves the available counter by delta only if the result stays within
	// 0..total_copies. It reports false, without error, if the book does not exist or the condition failed.
	UpdateBookAvailable(ctx context.Context, barcode core.BarcodeString, delta int) (bool, error)

	UpdateStudentStats(ctx context.Context, barcode core.BarcodeString, stats core.ReaderStats) error
}

// Ledger exposes the loan records.
type Ledger interface {
	CreateTransaction(ctx context.Context, txn core.Transaction) error

	// FindOpenTransaction returns the oldest open loan of the book to the student.
	FindOpenTransaction(ctx context.Context, studentBarcode, bookBarcode core.BarcodeString) (core.Transaction, error)

	FindAllOpenTransactions(ctx context.Context) ([]core.Transaction, error)

	// UpdateTransaction writes return date, status and overdue days of a loan that is still open.
	// It reports false, without error, if the loan does not exist or was closed in the meantime.
	UpdateTransaction(ctx context.Context, txn core.Transaction) (bool, error)
}

// Tx is the view of the store inside one unit of work.
type Tx interface {
	Inventory
	Ledger
}

// UnitOfWork runs fn atomically: everything fn writes is committed if it returns nil and rolled back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// TransactionFilter narrows a transaction listing. The zero value matches all loans.
type TransactionFilter struct {
	Status         core.LoanStatus
	StudentBarcode core.BarcodeString
}

// Admin is a front desk account that may log in with a password.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
}
