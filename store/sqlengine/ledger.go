package sqlengine

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine/internal/adapters"
)

const (
	colStudentBarcode = "student_barcode"
	colStudentName    = "student_name"
	colBookBarcode    = "book_barcode"
	colBookTitle      = "book_title"
	colBorrowDate     = "borrow_date"
	colDueDate        = "due_date"
	colReturnDate     = "return_date"
	colStatus         = "status"
	colOverdueDays    = "overdue_days"

	actionCreateTransaction       = "create_transaction"
	actionFindOpenTransaction     = "find_open_transaction"
	actionFindAllOpenTransactions = "find_all_open_transactions"
	actionUpdateTransaction       = "update_transaction"
	actionListTransactions        = "list_transactions"
)

var transactionColumns = []any{
	colID, colStudentBarcode, colStudentName, colBookBarcode, colBookTitle,
	colBorrowDate, colDueDate, colReturnDate, colStatus, colOverdueDays,
}

func scanTransaction(rows adapters.DBRows) (core.Transaction, error) {
	var t core.Transaction
	var status string
	var returnDate sql.NullTime

	if err := rows.Scan(
		&t.ID, &t.StudentBarcode, &t.StudentName, &t.BookBarcode, &t.BookTitle,
		&t.BorrowDate, &t.DueDate, &returnDate, &status, &t.OverdueDays,
	); err != nil {
		return core.Transaction{}, err
	}

	t.BorrowDate = core.ToOccurredAt(t.BorrowDate)
	t.DueDate = core.ToOccurredAt(t.DueDate)
	t.Status = core.LoanStatus(status)

	if returnDate.Valid {
		rd := core.ToOccurredAt(returnDate.Time)
		t.ReturnDate = &rd
	}

	return t, nil
}

func nullableTime(t *core.OccurredAt) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: core.ToOccurredAt(*t), Valid: true}
}

// CreateTransaction appends a new loan in autocommit mode, see store.Ledger.
func (e Engine) CreateTransaction(ctx context.Context, txn core.Transaction) error {
	return e.direct().CreateTransaction(ctx, txn)
}

func (s session) CreateTransaction(ctx context.Context, txn core.Transaction) error {
	stmt := s.engine.builder().
		Insert(s.engine.tables.transactions).
		Rows(goqu.Record{
			colID:             txn.ID,
			colStudentBarcode: txn.StudentBarcode,
			colStudentName:    txn.StudentName,
			colBookBarcode:    txn.BookBarcode,
			colBookTitle:      txn.BookTitle,
			colBorrowDate:     core.ToOccurredAt(txn.BorrowDate),
			colDueDate:        core.ToOccurredAt(txn.DueDate),
			colReturnDate:     nullableTime(txn.ReturnDate),
			colStatus:         string(txn.Status),
			colOverdueDays:    txn.OverdueDays,
		}).
		Prepared(true)

	_, err := s.exec(ctx, actionCreateTransaction, stmt)

	return err
}

// FindOpenTransaction returns the oldest open loan of the book to the student, see store.Ledger.
func (e Engine) FindOpenTransaction(ctx context.Context, studentBarcode, bookBarcode core.BarcodeString) (core.Transaction, error) {
	return e.direct().FindOpenTransaction(ctx, studentBarcode, bookBarcode)
}

func (s session) FindOpenTransaction(ctx context.Context, studentBarcode, bookBarcode core.BarcodeString) (core.Transaction, error) {
	stmt := s.engine.builder().
		From(s.engine.tables.transactions).
		Select(transactionColumns...).
		Where(
			goqu.C(colStatus).Eq(string(core.LoanStatusBorrowed)),
			goqu.C(colStudentBarcode).Eq(studentBarcode),
			goqu.C(colBookBarcode).Eq(bookBarcode),
		).
		Order(goqu.C(colBorrowDate).Asc(), goqu.C(colID).Asc()).
		Limit(1).
		Prepared(true)

	rows, err := s.query(ctx, actionFindOpenTransaction, stmt)
	if err != nil {
		return core.Transaction{}, err
	}

	return first(ctx, s, rows, scanTransaction)
}

// FindAllOpenTransactions returns every open loan ordered by due date, see store.Ledger.
func (e Engine) FindAllOpenTransactions(ctx context.Context) ([]core.Transaction, error) {
	return e.direct().FindAllOpenTransactions(ctx)
}

func (s session) FindAllOpenTransactions(ctx context.Context) ([]core.Transaction, error) {
	stmt := s.engine.builder().
		From(s.engine.tables.transactions).
		Select(transactionColumns...).
		Where(goqu.C(colStatus).Eq(string(core.LoanStatusBorrowed))).
		Order(goqu.C(colDueDate).Asc(), goqu.C(colID).Asc()).
		Prepared(true)

	rows, err := s.query(ctx, actionFindAllOpenTransactions, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, s, rows, scanTransaction)
}

// UpdateTransaction writes the mutable fields of a loan that is still open, see store.Ledger.
func (e Engine) UpdateTransaction(ctx context.Context, txn core.Transaction) (bool, error) {
	return e.direct().UpdateTransaction(ctx, txn)
}

func (s session) UpdateTransaction(ctx context.Context, txn core.Transaction) (bool, error) {
	stmt := s.engine.builder().
		Update(s.engine.tables.transactions).
		Set(goqu.Record{
			colReturnDate:  nullableTime(txn.ReturnDate),
			colStatus:      string(txn.Status),
			colOverdueDays: txn.OverdueDays,
		}).
		Where(
			goqu.C(colID).Eq(txn.ID),
			goqu.C(colStatus).Eq(string(core.LoanStatusBorrowed)),
		).
		Prepared(true)

	affected, err := s.exec(ctx, actionUpdateTransaction, stmt)
	if err != nil {
		return false, err
	}

	if affected == 0 {
		s.engine.logOperationContext(ctx, logMsgNotApplied, logAttrAction, actionUpdateTransaction, logAttrRowsAffected, affected)
	}

	return affected > 0, nil
}

// ListTransactions returns the loans matching filter, newest first.
func (e Engine) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]core.Transaction, error) {
	s := e.direct()

	conditions := make([]goqu.Expression, 0, 2)

	if filter.Status != "" {
		conditions = append(conditions, goqu.C(colStatus).Eq(string(filter.Status)))
	}

	if filter.StudentBarcode != "" {
		conditions = append(conditions, goqu.C(colStudentBarcode).Eq(filter.StudentBarcode))
	}

	stmt := e.builder().
		From(e.tables.transactions).
		Select(transactionColumns...).
		Where(conditions...).
		Order(goqu.C(colBorrowDate).Desc(), goqu.C(colID).Desc()).
		Prepared(true)

	rows, err := s.query(ctx, actionListTransactions, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, s, rows, scanTransaction)
}
