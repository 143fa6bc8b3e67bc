package removebook

import (
	"context"
	"errors"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonBookNotFound = "Book not found"

// BookStore defines the interface needed by the CommandHandler.
type BookStore interface {
	DeleteBook(ctx context.Context, barcode core.BarcodeString) error
}

// Result carries only the handler metadata.
type Result struct {
	shell.HandlerResult
}

// CommandHandler deletes a book.
type CommandHandler struct {
	books BookStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(books BookStore) CommandHandler {
	return CommandHandler{books: books}
}

// Handle deletes the book, an unknown barcode is rejected as not found.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := h.books.DeleteBook(ctx, command.Barcode); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			err = core.Reject(core.ErrNotFound, failureReasonBookNotFound)
		}

		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil))}, nil
}
