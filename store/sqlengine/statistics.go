package sqlengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	actionCountBooks               = "count_books"
	actionSumAvailable             = "sum_available"
	actionCountOpenTransactions    = "count_open_transactions"
	actionCountActiveStudents      = "count_active_students"
	actionCountOverdueTransactions = "count_overdue_transactions"
	aliasTotal                     = "total"
)

// CountBooks returns the number of titles in the inventory.
func (e Engine) CountBooks(ctx context.Context) (int, error) {
	stmt := e.builder().
		From(e.tables.books).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal)).
		Prepared(true)

	return e.direct().count(ctx, actionCountBooks, stmt)
}

// SumAvailable returns the number of copies on the shelves over all titles.
func (e Engine) SumAvailable(ctx context.Context) (int, error) {
	stmt := e.builder().
		From(e.tables.books).
		Select(goqu.COALESCE(goqu.SUM(colAvailable), 0).As(aliasTotal)).
		Prepared(true)

	return e.direct().count(ctx, actionSumAvailable, stmt)
}

// CountOpenTransactions returns the number of loans that are not returned yet.
func (e Engine) CountOpenTransactions(ctx context.Context) (int, error) {
	stmt := e.builder().
		From(e.tables.transactions).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal)).
		Where(goqu.C(colStatus).Eq(string(core.LoanStatusBorrowed))).
		Prepared(true)

	return e.direct().count(ctx, actionCountOpenTransactions, stmt)
}

// CountActiveStudents returns the number of students flagged active.
func (e Engine) CountActiveStudents(ctx context.Context) (int, error) {
	stmt := e.builder().
		From(e.tables.students).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal)).
		Where(goqu.C(colActive).Eq(true)).
		Prepared(true)

	return e.direct().count(ctx, actionCountActiveStudents, stmt)
}

// CountOverdueTransactions returns the number of open loans whose due date lies before asOf.
// It compares due dates and ignores the stored overdue_days, which may be stale.
func (e Engine) CountOverdueTransactions(ctx context.Context, asOf time.Time) (int, error) {
	stmt := e.builder().
		From(e.tables.transactions).
		Select(goqu.COUNT(goqu.Star()).As(aliasTotal)).
		Where(
			goqu.C(colStatus).Eq(string(core.LoanStatusBorrowed)),
			goqu.C(colDueDate).Lt(core.ToOccurredAt(asOf)),
		).
		Prepared(true)

	return e.direct().count(ctx, actionCountOverdueTransactions, stmt)
}
