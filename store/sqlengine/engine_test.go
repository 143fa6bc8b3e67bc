package sqlengine_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine"
	"github.com/readingcorner/library-circulation/testutil/testdb"
)

var fakeNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type engineFactory struct {
	name string
	new  func(t testing.TB) sqlengine.Engine
}

func engineFactories() []engineFactory {
	return []engineFactory{
		{name: "sqlite/sqldb", new: func(t testing.TB) sqlengine.Engine { return testdb.NewSQLiteEngine(t) }},
		{name: "sqlite/sqlx", new: func(t testing.TB) sqlengine.Engine { return testdb.NewSQLiteEngineWithSQLX(t) }},
		{name: "postgres/pgxpool", new: testdb.NewPostgresEngine},
	}
}

func forEachEngine(t *testing.T, test func(t *testing.T, engine sqlengine.Engine)) {
	for _, factory := range engineFactories() {
		t.Run(factory.name, func(t *testing.T) {
			test(t, factory.new(t))
		})
	}
}

func givenBook(t testing.TB, engine sqlengine.Engine, barcode string, totalCopies int) core.Book {
	book, err := core.BuildBook("id-"+barcode, barcode, core.BookDetails{
		Title:    "Title of " + barcode,
		Author:   "Author",
		Category: "Fiction",
	}, totalCopies)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.InsertBook(context.Background(), book), "error in arranging test data")

	return book
}

func givenStudent(t testing.TB, engine sqlengine.Engine, barcode string) core.Student {
	student, err := core.BuildStudent("id-"+barcode, barcode, core.StudentDetails{Name: "Reader " + barcode, Class: "5A"})
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.InsertStudent(context.Background(), student), "error in arranging test data")

	return student
}

func givenOpenLoan(t testing.TB, engine sqlengine.Engine, id string, student core.Student, book core.Book, at time.Time) core.Transaction {
	txn := core.OpenLoan(id, student, book, at)
	require.NoError(t, engine.CreateTransaction(context.Background(), txn), "error in arranging test data")

	return txn
}

func Test_NewEngine_Fails_WhenConnectionIsNil(t *testing.T) {
	_, err := sqlengine.NewEngineFromSQLDB(nil)
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)

	_, err = sqlengine.NewEngineFromSQLX(nil)
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)

	_, err = sqlengine.NewEngineFromPGXPool((*pgxpool.Pool)(nil))
	assert.ErrorIs(t, err, store.ErrNilDatabaseConnection)
}

func Test_NewEngine_Fails_WhenOptionIsInvalid(t *testing.T) {
	db := testdb.OpenSQLite(t)

	_, err := sqlengine.NewEngineFromSQLDB(db, sqlengine.WithDialect("oracle"))
	assert.ErrorIs(t, err, store.ErrUnsupportedDialect)

	_, err = sqlengine.NewEngineFromSQLX(sqlx.NewDb(db, "sqlite3"), sqlengine.WithTablePrefix(""))
	assert.ErrorIs(t, err, store.ErrEmptyTableName)
}

func Test_NewEngine_DefaultsToPostgresDialect(t *testing.T) {
	engine, err := sqlengine.NewEngineFromSQLDB(&sql.DB{})

	require.NoError(t, err)
	assert.Equal(t, sqlengine.DialectPostgres, engine.Dialect())
}

func Test_Migrate_Succeeds_WhenRunTwice(t *testing.T) {
	engine := testdb.NewSQLiteEngine(t)

	assert.NoError(t, engine.Migrate(context.Background()))
}

func Test_Books_RoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		book := givenBook(t, engine, "BK001", 3)
		givenBook(t, engine, "BK000", 1)

		// act
		found, findErr := engine.FindBook(ctx, "BK001")
		all, listErr := engine.ListBooks(ctx)

		// assert
		require.NoError(t, findErr)
		require.NoError(t, listErr)
		assert.Equal(t, book, found)
		require.Len(t, all, 2)
		assert.Equal(t, "BK000", all[0].Barcode)
	})
}

func Test_FindBook_ReturnsRecordNotFound_WhenBarcodeIsUnknown(t *testing.T) {
	engine := testdb.NewSQLiteEngine(t)

	_, err := engine.FindBook(context.Background(), "nope")

	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func Test_InsertBook_ReturnsDuplicateKey_WhenBarcodeExists(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		// arrange
		book := givenBook(t, engine, "BK001", 1)
		book.ID = "another-id"

		// act
		err := engine.InsertBook(context.Background(), book)

		// assert
		assert.ErrorIs(t, err, store.ErrDuplicateKey)
	})
}

func Test_UpdateBookAvailable_StaysWithinBounds(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()
		givenBook(t, engine, "BK001", 1)

		applied, err := engine.UpdateBookAvailable(ctx, "BK001", +1)
		require.NoError(t, err)
		assert.False(t, applied, "available must not exceed total_copies")

		applied, err = engine.UpdateBookAvailable(ctx, "BK001", -1)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = engine.UpdateBookAvailable(ctx, "BK001", -1)
		require.NoError(t, err)
		assert.False(t, applied, "available must not drop below zero")

		applied, err = engine.UpdateBookAvailable(ctx, "unknown", -1)
		require.NoError(t, err)
		assert.False(t, applied)

		book, err := engine.FindBook(ctx, "BK001")
		require.NoError(t, err)
		assert.Equal(t, 0, book.Available)
	})
}

func Test_UpdateBook_ReturnsRecordNotFound_WhenAvailableChangedInBetween(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)

	// arrange
	book := givenBook(t, engine, "BK001", 2)
	_, err := engine.UpdateBookAvailable(ctx, "BK001", -1)
	require.NoError(t, err)

	// act
	total := 3
	revised, err := book.Revise(core.BookDetails{Title: "New"}, &total)
	require.NoError(t, err)
	updateErr := engine.UpdateBook(ctx, revised, book.Available)

	// assert
	assert.ErrorIs(t, updateErr, store.ErrRecordNotFound)
}

func Test_DeleteBook(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	givenBook(t, engine, "BK001", 1)

	require.NoError(t, engine.DeleteBook(ctx, "BK001"))
	assert.ErrorIs(t, engine.DeleteBook(ctx, "BK001"), store.ErrRecordNotFound)
}

func Test_Students_RoundTrip(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		student := givenStudent(t, engine, "STU001")
		stats := core.ReaderStats{Stars: 22, BooksRead: 10, Badges: []string{core.BadgeBookworm, core.BadgeSpeedReader, core.BadgeStarReader}}

		// act
		statsErr := engine.UpdateStudentStats(ctx, "STU001", stats)
		found, findErr := engine.FindStudent(ctx, "STU001")

		// assert
		require.NoError(t, statsErr)
		require.NoError(t, findErr)
		assert.Equal(t, student.WithStats(stats), found)
	})
}

func Test_Students_EmptyBadgesStayEmptyList(t *testing.T) {
	engine := testdb.NewSQLiteEngine(t)
	givenStudent(t, engine, "STU001")

	found, err := engine.FindStudent(context.Background(), "STU001")

	require.NoError(t, err)
	assert.NotNil(t, found.Badges)
	assert.Empty(t, found.Badges)
}

func Test_UpdateStudent_KeepsReaderStats(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)

	// arrange
	student := givenStudent(t, engine, "STU001")
	require.NoError(t, engine.UpdateStudentStats(ctx, "STU001", core.ReaderStats{Stars: 4, BooksRead: 2, Badges: []string{}}))

	inactive := false
	revised, err := student.Revise(core.StudentDetails{Name: "Renamed", Class: "6B"}, &inactive)
	require.NoError(t, err)

	// act
	updateErr := engine.UpdateStudent(ctx, revised)
	found, findErr := engine.FindStudent(ctx, "STU001")

	// assert
	require.NoError(t, updateErr)
	require.NoError(t, findErr)
	assert.Equal(t, "Renamed", found.Name)
	assert.False(t, found.Active)
	assert.Equal(t, 4, found.Stars)
	assert.Equal(t, 2, found.BooksRead)
}

func Test_UpdateAndDeleteStudent_ReturnRecordNotFound_WhenBarcodeIsUnknown(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)

	ghost, err := core.BuildStudent("x", "ghost", core.StudentDetails{Name: "Ghost", Class: "1A"})
	require.NoError(t, err)

	assert.ErrorIs(t, engine.UpdateStudent(ctx, ghost), store.ErrRecordNotFound)
	assert.ErrorIs(t, engine.DeleteStudent(ctx, "ghost"), store.ErrRecordNotFound)
}

func Test_Ledger_FindOpenTransaction_ReturnsOldestOpenLoan(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		student := givenStudent(t, engine, "STU001")
		book := givenBook(t, engine, "BK001", 2)
		older := givenOpenLoan(t, engine, "txn-1", student, book, fakeNow.Add(-48*time.Hour))
		givenOpenLoan(t, engine, "txn-2", student, book, fakeNow)

		// act
		found, err := engine.FindOpenTransaction(ctx, "STU001", "BK001")

		// assert
		require.NoError(t, err)
		assert.Equal(t, older, found)
	})
}

func Test_Ledger_FindOpenTransaction_ReturnsRecordNotFound_WhenOnlyClosedLoansExist(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)

	// arrange
	txn := givenOpenLoan(t, engine, "txn-1", givenStudent(t, engine, "STU001"), givenBook(t, engine, "BK001", 1), fakeNow)
	applied, err := engine.UpdateTransaction(ctx, txn.Close(fakeNow.Add(time.Hour)))
	require.NoError(t, err)
	require.True(t, applied)

	// act
	_, findErr := engine.FindOpenTransaction(ctx, "STU001", "BK001")

	// assert
	assert.ErrorIs(t, findErr, store.ErrRecordNotFound)
}

func Test_Ledger_UpdateTransaction_IsNotApplied_WhenLoanIsAlreadyClosed(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		txn := givenOpenLoan(t, engine, "txn-1", givenStudent(t, engine, "STU001"), givenBook(t, engine, "BK001", 1), fakeNow)
		closed := txn.Close(fakeNow.Add(20 * 24 * time.Hour))

		// act
		firstApplied, firstErr := engine.UpdateTransaction(ctx, closed)
		secondApplied, secondErr := engine.UpdateTransaction(ctx, closed)

		// assert
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.True(t, firstApplied)
		assert.False(t, secondApplied)

		all, err := engine.ListTransactions(ctx, store.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, closed, all[0])
		assert.Equal(t, 5, all[0].OverdueDays)
	})
}

func Test_Ledger_ListTransactions_FiltersByStatusAndStudent(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)

	// arrange
	alice := givenStudent(t, engine, "STU001")
	bob := givenStudent(t, engine, "STU002")
	book := givenBook(t, engine, "BK001", 5)
	givenOpenLoan(t, engine, "txn-1", alice, book, fakeNow.Add(-time.Hour))
	givenOpenLoan(t, engine, "txn-2", bob, book, fakeNow)
	closed := givenOpenLoan(t, engine, "txn-3", alice, book, fakeNow.Add(-2*time.Hour))
	_, err := engine.UpdateTransaction(ctx, closed.Close(fakeNow))
	require.NoError(t, err)

	// act
	all, allErr := engine.ListTransactions(ctx, store.TransactionFilter{})
	open, openErr := engine.ListTransactions(ctx, store.TransactionFilter{Status: core.LoanStatusBorrowed})
	aliceOpen, aliceErr := engine.ListTransactions(ctx, store.TransactionFilter{Status: core.LoanStatusBorrowed, StudentBarcode: "STU001"})
	allOpen, allOpenErr := engine.FindAllOpenTransactions(ctx)

	// assert
	require.NoError(t, errors.Join(allErr, openErr, aliceErr, allOpenErr))
	assert.Equal(t, []string{"txn-2", "txn-1", "txn-3"}, ids(all), "newest first")
	assert.Equal(t, []string{"txn-2", "txn-1"}, ids(open))
	assert.Equal(t, []string{"txn-1"}, ids(aliceOpen))
	assert.Equal(t, []string{"txn-1", "txn-2"}, ids(allOpen), "ordered by due date")
}

func ids(txns []core.Transaction) []string {
	result := make([]string, 0, len(txns))
	for _, txn := range txns {
		result = append(result, txn.ID)
	}

	return result
}

func Test_WithinTx_CommitsAllWrites_WhenCallbackSucceeds(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		student := givenStudent(t, engine, "STU001")
		book := givenBook(t, engine, "BK001", 1)

		// act
		err := engine.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
			if _, err := tx.UpdateBookAvailable(ctx, book.Barcode, -1); err != nil {
				return err
			}

			return tx.CreateTransaction(ctx, core.OpenLoan("txn-1", student, book, fakeNow))
		})

		// assert
		require.NoError(t, err)

		found, err := engine.FindBook(ctx, "BK001")
		require.NoError(t, err)
		assert.Equal(t, 0, found.Available)

		open, err := engine.FindAllOpenTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, open, 1)
	})
}

func Test_FindStudentForUpdate_ReturnsStudent_InsideAndOutsideUnitOfWork(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		givenStudent(t, engine, "STU001")

		// act
		var locked core.Student
		err := engine.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
			var findErr error
			locked, findErr = tx.FindStudentForUpdate(ctx, "STU001")

			return findErr
		})
		direct, directErr := engine.FindStudentForUpdate(ctx, "STU001")
		_, missingErr := engine.FindStudentForUpdate(ctx, "STU999")

		// assert
		require.NoError(t, err)
		require.NoError(t, directErr)
		assert.Equal(t, "STU001", locked.Barcode)
		assert.Equal(t, locked, direct)
		assert.ErrorIs(t, missingErr, store.ErrRecordNotFound)
	})
}

func Test_WithinTx_RollsBackAllWrites_WhenCallbackFails(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()
		errAbort := errors.New("abort")

		// arrange
		student := givenStudent(t, engine, "STU001")
		book := givenBook(t, engine, "BK001", 1)

		// act
		err := engine.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
			if _, err := tx.UpdateBookAvailable(ctx, book.Barcode, -1); err != nil {
				return err
			}

			if err := tx.CreateTransaction(ctx, core.OpenLoan("txn-1", student, book, fakeNow)); err != nil {
				return err
			}

			return errAbort
		})

		// assert
		assert.ErrorIs(t, err, errAbort)

		found, err := engine.FindBook(ctx, "BK001")
		require.NoError(t, err)
		assert.Equal(t, 1, found.Available)

		open, err := engine.FindAllOpenTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, open)
	})
}

func Test_Statistics_Counts(t *testing.T) {
	forEachEngine(t, func(t *testing.T, engine sqlengine.Engine) {
		ctx := context.Background()

		// arrange
		alice := givenStudent(t, engine, "STU001")
		bob := givenStudent(t, engine, "STU002")
		inactive, err := bob.Revise(core.StudentDetails{Name: bob.Name, Class: bob.Class}, new(bool))
		require.NoError(t, err)
		require.NoError(t, engine.UpdateStudent(ctx, inactive))

		b1 := givenBook(t, engine, "BK001", 3)
		givenBook(t, engine, "BK002", 2)
		_, err = engine.UpdateBookAvailable(ctx, "BK001", -1)
		require.NoError(t, err)
		_, err = engine.UpdateBookAvailable(ctx, "BK001", -1)
		require.NoError(t, err)

		givenOpenLoan(t, engine, "txn-1", alice, b1, fakeNow.Add(-20*24*time.Hour))
		givenOpenLoan(t, engine, "txn-2", alice, b1, fakeNow)

		// act
		totalBooks, err1 := engine.CountBooks(ctx)
		totalAvailable, err2 := engine.SumAvailable(ctx)
		borrowed, err3 := engine.CountOpenTransactions(ctx)
		active, err4 := engine.CountActiveStudents(ctx)
		overdue, err5 := engine.CountOverdueTransactions(ctx, fakeNow)
		students, err6 := engine.CountStudents(ctx)

		// assert
		require.NoError(t, errors.Join(err1, err2, err3, err4, err5, err6))
		assert.Equal(t, 2, totalBooks)
		assert.Equal(t, 3, totalAvailable)
		assert.Equal(t, 2, borrowed)
		assert.Equal(t, 1, active)
		assert.Equal(t, 1, overdue)
		assert.Equal(t, 2, students)
	})
}

func Test_Statistics_SumAvailableIsZero_WhenInventoryIsEmpty(t *testing.T) {
	engine := testdb.NewSQLiteEngine(t)

	total, err := engine.SumAvailable(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func Test_Admins_RoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := testdb.NewSQLiteEngine(t)
	admin := store.Admin{ID: "a1", Username: "admin", PasswordHash: "hash"}

	require.NoError(t, engine.InsertAdmin(ctx, admin))
	assert.ErrorIs(t, engine.InsertAdmin(ctx, store.Admin{ID: "a2", Username: "admin", PasswordHash: "x"}), store.ErrDuplicateKey)

	found, err := engine.FindAdmin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin, found)

	_, err = engine.FindAdmin(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func Test_Ping(t *testing.T) {
	engine := testdb.NewSQLiteEngine(t)

	assert.NoError(t, engine.Ping(context.Background()))
}
