package addbook

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonDuplicateBarcode = "Book barcode already exists"

// BookStore defines the interface needed by the CommandHandler.
type BookStore interface {
	InsertBook(ctx context.Context, book core.Book) error
}

// Result is the stored book.
type Result struct {
	shell.HandlerResult
	Book core.Book
}

// CommandHandler validates and stores a new book.
type CommandHandler struct {
	books BookStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(books BookStore) CommandHandler {
	return CommandHandler{books: books}
}

// Handle builds the book and inserts it. A barcode that is already taken is rejected as ineligible.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	book, err := core.BuildBook(uuid.Must(uuid.NewV7()).String(), command.Barcode, command.Details, command.TotalCopies)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	if err := h.books.InsertBook(ctx, book); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			err = core.Reject(core.ErrIneligibleState, failureReasonDuplicateBarcode)
		}

		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil)),
		Book:          book,
	}, nil
}
