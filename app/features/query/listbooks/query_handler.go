package listbooks

import (
	"context"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

// BookStore defines the interface needed by the QueryHandler.
type BookStore interface {
	ListBooks(ctx context.Context) ([]core.Book, error)
}

// QueryHandler lists books ordered by barcode.
type QueryHandler struct {
	books BookStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(books BookStore) QueryHandler {
	return QueryHandler{books: books}
}

// Handle lists all books.
func (h QueryHandler) Handle(ctx context.Context, _ Query) ([]core.Book, error) {
	return h.books.ListBooks(ctx)
}
