package returnbook_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/features/command/returnbook"
	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/testutil/testdb"
)

func Test_CommandHandler_Handle_Success_WhenReturnedOnTime(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 2)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	handler := returnbook.NewCommandHandler(engine)

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(5*24*time.Hour)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Book returned successfully!", result.Message)
	assert.Zero(t, result.Transaction.OverdueDays)
	assert.True(t, result.InventoryRestored)
	assert.True(t, result.RewardsApplied)

	storedBook, err := engine.FindBook(ctx, "BK001")
	require.NoError(t, err)
	assert.Equal(t, 2, storedBook.Available)

	storedStudent, err := engine.FindStudent(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, 2, storedStudent.Stars)
	assert.Equal(t, 1, storedStudent.BooksRead)

	_, err = engine.FindOpenTransaction(ctx, "STU001", "BK001")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func Test_CommandHandler_Handle_GrantsNoStars_WhenReturnedLate(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 1)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	handler := returnbook.NewCommandHandler(engine)

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(20*24*time.Hour)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 5, result.Transaction.OverdueDays)
	assert.Equal(t, "Book returned! 5 days overdue.", result.Message)
	assert.Equal(t, core.ReaderStats{Stars: 0, BooksRead: 1, Badges: []string{}}, result.Stats)

	transactions, err := engine.ListTransactions(ctx, store.TransactionFilter{Status: core.LoanStatusReturned})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, 5, transactions[0].OverdueDays)
}

func Test_CommandHandler_Handle_UnlocksBookworm_OnFifthReturn(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 1)
	require.NoError(t, engine.UpdateStudentStats(ctx, "STU001", core.ReaderStats{Stars: 8, BooksRead: 4, Badges: []string{}}))
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	handler := returnbook.NewCommandHandler(engine)

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(time.Hour)))

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.ReaderStats{Stars: 10, BooksRead: 5, Badges: []string{core.BadgeBookworm}}, result.Stats)

	stored, err := engine.FindStudent(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, []string{core.BadgeBookworm}, stored.Badges)
}

func Test_CommandHandler_Handle_Error_WhenNoOpenLoanExists(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	testdb.GivenStudent(t, engine, "STU001")
	testdb.GivenBook(t, engine, "BK001", 1)
	handler := returnbook.NewCommandHandler(engine)

	// act
	_, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt))

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.EqualError(t, err, "no active borrow record found")

	stored, findErr := engine.FindStudent(ctx, "STU001")
	require.NoError(t, findErr)
	assert.Zero(t, stored.BooksRead)
}

func Test_CommandHandler_Handle_SkipsInventoryAndRewards_WhenBookAndStudentWereDeleted(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 1)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	require.NoError(t, engine.DeleteBook(ctx, "BK001"))
	require.NoError(t, engine.DeleteStudent(ctx, "STU001"))
	handler := returnbook.NewCommandHandler(engine)

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(time.Hour)))

	// assert
	require.NoError(t, err)
	assert.False(t, result.InventoryRestored)
	assert.False(t, result.RewardsApplied)
	assert.Equal(t, core.LoanStatusReturned, result.Transaction.Status)
}

func Test_CommandHandler_Handle_ClosesLoanOnlyOnce_WhenReturnedConcurrently(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 1)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	handler := returnbook.NewCommandHandler(engine)

	// act
	errs := make([]error, 2)
	var wg sync.WaitGroup

	for i := range errs {
		i := i
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, errs[i] = handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(time.Hour)))
		}()
	}

	wg.Wait()

	// assert
	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.ErrorIs(t, err, core.ErrNotFound)
	}

	assert.Equal(t, 1, succeeded)

	stored, err := engine.FindStudent(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.BooksRead, "rewards must be granted once")
	assert.Equal(t, 2, stored.Stars)
}

func Test_CommandHandler_Handle_AppliesEveryReward_WhenSameStudentReturnsConcurrently(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewPostgresEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	first := testdb.GivenBook(t, engine, "BK001", 1)
	second := testdb.GivenBook(t, engine, "BK002", 1)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, first, borrowedAt)
	testdb.GivenOpenLoan(t, engine, "loan-2", student, second, borrowedAt)
	handler := returnbook.NewCommandHandler(engine)

	// act
	bookBarcodes := []core.BarcodeString{"BK001", "BK002"}
	errs := make([]error, len(bookBarcodes))
	var wg sync.WaitGroup

	for i, bookBarcode := range bookBarcodes {
		i, bookBarcode := i, bookBarcode
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, errs[i] = handler.Handle(ctx, returnbook.BuildCommand("STU001", bookBarcode, borrowedAt.Add(time.Hour)))
		}()
	}

	wg.Wait()

	// assert
	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := engine.FindStudent(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.BooksRead, "no reward may be lost")
	assert.Equal(t, 4, stored.Stars)
}

// missedCloseUnitOfWork runs the real unit of work, but closing the loan never matches a row,
// like when a concurrent return closed it between the lookup and the update.
type missedCloseUnitOfWork struct {
	store.UnitOfWork
}

func (u missedCloseUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return u.UnitOfWork.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, missedCloseTx{Tx: tx})
	})
}

type missedCloseTx struct {
	store.Tx
}

func (missedCloseTx) UpdateTransaction(context.Context, core.Transaction) (bool, error) {
	return false, nil
}

func Test_CommandHandler_Handle_Error_WhenLoanWasClosedInBetween(t *testing.T) {
	// setup
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	student := testdb.GivenStudent(t, engine, "STU001")
	book := testdb.GivenBook(t, engine, "BK001", 1)
	testdb.GivenOpenLoan(t, engine, "loan-1", student, book, borrowedAt)
	handler := returnbook.NewCommandHandler(missedCloseUnitOfWork{UnitOfWork: engine})

	// act
	_, err := handler.Handle(ctx, returnbook.BuildCommand("STU001", "BK001", borrowedAt.Add(time.Hour)))

	// assert
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.EqualError(t, err, "no active borrow record found")

	storedBook, err := engine.FindBook(ctx, "BK001")
	require.NoError(t, err)
	assert.Zero(t, storedBook.Available, "inventory must stay untouched")

	storedStudent, err := engine.FindStudent(ctx, "STU001")
	require.NoError(t, err)
	assert.Zero(t, storedStudent.Stars)
	assert.Zero(t, storedStudent.BooksRead)

	open, err := engine.FindOpenTransaction(ctx, "STU001", "BK001")
	require.NoError(t, err)
	assert.Equal(t, "loan-1", open.ID)
}
