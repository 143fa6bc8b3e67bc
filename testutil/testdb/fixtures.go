package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store/sqlengine"
)

// GivenBook inserts a book with all copies available.
func GivenBook(t testing.TB, engine sqlengine.Engine, barcode core.BarcodeString, totalCopies int) core.Book {
	t.Helper()

	book, err := core.BuildBook("book-"+barcode, barcode, core.BookDetails{
		Title:    "Title of " + barcode,
		Author:   "Author of " + barcode,
		Category: "Fiction",
	}, totalCopies)
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.InsertBook(context.Background(), book), "error in arranging test data")

	return book
}

// GivenStudent inserts an active student without rewards.
func GivenStudent(t testing.TB, engine sqlengine.Engine, barcode core.BarcodeString) core.Student {
	t.Helper()

	student, err := core.BuildStudent("student-"+barcode, barcode, core.StudentDetails{
		Name:  "Reader " + barcode,
		Class: "5A",
	})
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.InsertStudent(context.Background(), student), "error in arranging test data")

	return student
}

// GivenOpenLoan lends one copy of book to student at the given time, taking the copy from the inventory.
func GivenOpenLoan(
	t testing.TB,
	engine sqlengine.Engine,
	id string,
	student core.Student,
	book core.Book,
	at time.Time,
) core.Transaction {
	t.Helper()

	ctx := context.Background()
	txn := core.OpenLoan(id, student, book, at)

	applied, err := engine.UpdateBookAvailable(ctx, book.Barcode, -1)
	require.NoError(t, err, "error in arranging test data")
	require.True(t, applied, "error in arranging test data: no copy left")
	require.NoError(t, engine.CreateTransaction(ctx, txn), "error in arranging test data")

	return txn
}
