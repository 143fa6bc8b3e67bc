package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine/internal/adapters"
)

const (
	colID          = "id"
	colBarcode     = "barcode"
	colTitle       = "title"
	colAuthor      = "author"
	colCategory    = "category"
	colCoverImage  = "cover_image"
	colAvailable   = "available"
	colTotalCopies = "total_copies"

	actionFindBook            = "find_book"
	actionListBooks           = "list_books"
	actionInsertBook          = "insert_book"
	actionUpdateBook          = "update_book"
	actionDeleteBook          = "delete_book"
	actionUpdateBookAvailable = "update_book_available"
	actionMigrate             = "migrate"
)

var bookColumns = []any{colID, colBarcode, colTitle, colAuthor, colCategory, colCoverImage, colAvailable, colTotalCopies}

func scanBook(rows adapters.DBRows) (core.Book, error) {
	var b core.Book

	err := rows.Scan(&b.ID, &b.Barcode, &b.Title, &b.Author, &b.Category, &b.CoverImage, &b.Available, &b.TotalCopies)

	return b, err
}

// FindBook returns the book with the given barcode or store.ErrRecordNotFound.
func (e Engine) FindBook(ctx context.Context, barcode core.BarcodeString) (core.Book, error) {
	return e.direct().FindBook(ctx, barcode)
}

func (s session) FindBook(ctx context.Context, barcode core.BarcodeString) (core.Book, error) {
	stmt := s.engine.builder().
		From(s.engine.tables.books).
		Select(bookColumns...).
		Where(goqu.C(colBarcode).Eq(barcode)).
		Prepared(true)

	rows, err := s.query(ctx, actionFindBook, stmt)
	if err != nil {
		return core.Book{}, err
	}

	return first(ctx, s, rows, scanBook)
}

// ListBooks returns all books ordered by barcode.
func (e Engine) ListBooks(ctx context.Context) ([]core.Book, error) {
	s := e.direct()

	stmt := e.builder().
		From(e.tables.books).
		Select(bookColumns...).
		Order(goqu.C(colBarcode).Asc()).
		Prepared(true)

	rows, err := s.query(ctx, actionListBooks, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, s, rows, scanBook)
}

// InsertBook stores a new book. A book with the same barcode yields store.ErrDuplicateKey.
func (e Engine) InsertBook(ctx context.Context, book core.Book) error {
	stmt := e.builder().
		Insert(e.tables.books).
		Rows(goqu.Record{
			colID:          book.ID,
			colBarcode:     book.Barcode,
			colTitle:       book.Title,
			colAuthor:      book.Author,
			colCategory:    book.Category,
			colCoverImage:  book.CoverImage,
			colAvailable:   book.Available,
			colTotalCopies: book.TotalCopies,
		}).
		Prepared(true)

	_, err := e.direct().exec(ctx, actionInsertBook, stmt)

	return err
}

// UpdateBook overwrites the details and counters of an existing book.
// The counters are only written if available still has the value the caller read, so that a concurrent
// borrow or return in between makes the update fail with store.ErrRecordNotFound instead of losing a count.
func (e Engine) UpdateBook(ctx context.Context, book core.Book, readAvailable int) error {
	stmt := e.builder().
		Update(e.tables.books).
		Set(goqu.Record{
			colTitle:       book.Title,
			colAuthor:      book.Author,
			colCategory:    book.Category,
			colCoverImage:  book.CoverImage,
			colAvailable:   book.Available,
			colTotalCopies: book.TotalCopies,
		}).
		Where(
			goqu.C(colBarcode).Eq(book.Barcode),
			goqu.C(colAvailable).Eq(readAvailable),
		).
		Prepared(true)

	affected, err := e.direct().exec(ctx, actionUpdateBook, stmt)
	if err != nil {
		return err
	}

	if affected == 0 {
		return store.ErrRecordNotFound
	}

	return nil
}

// DeleteBook removes the book. Loans that reference it keep their snapshot of the title.
func (e Engine) DeleteBook(ctx context.Context, barcode core.BarcodeString) error {
	return e.deleteByBarcode(ctx, actionDeleteBook, e.tables.books, barcode)
}

func (e Engine) deleteByBarcode(ctx context.Context, action, table string, barcode core.BarcodeString) error {
	stmt := e.builder().
		Delete(table).
		Where(goqu.C(colBarcode).Eq(barcode)).
		Prepared(true)

	affected, err := e.direct().exec(ctx, action, stmt)
	if err != nil {
		return err
	}

	if affected == 0 {
		return store.ErrRecordNotFound
	}

	return nil
}

// UpdateBookAvailable moves the available counter in autocommit mode, see store.Inventory.
func (e Engine) UpdateBookAvailable(ctx context.Context, barcode core.BarcodeString, delta int) (bool, error) {
	return e.direct().UpdateBookAvailable(ctx, barcode, delta)
}

func (s session) UpdateBookAvailable(ctx context.Context, barcode core.BarcodeString, delta int) (bool, error) {
	stmt := s.engine.builder().
		Update(s.engine.tables.books).
		Set(goqu.Record{colAvailable: goqu.L("? + ?", goqu.C(colAvailable), delta)}).
		Where(
			goqu.C(colBarcode).Eq(barcode),
			goqu.L("? + ? >= 0", goqu.C(colAvailable), delta),
			goqu.L("? + ? <= ?", goqu.C(colAvailable), delta, goqu.C(colTotalCopies)),
		).
		Prepared(true)

	affected, err := s.exec(ctx, actionUpdateBookAvailable, stmt)
	if err != nil {
		return false, err
	}

	if affected == 0 {
		s.engine.logOperationContext(ctx, logMsgNotApplied, logAttrAction, actionUpdateBookAvailable, logAttrRowsAffected, affected)
	}

	return affected > 0, nil
}
