package updatebook

import (
	"context"
	"errors"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

// BookStore defines the interface needed by the CommandHandler.
type BookStore interface {
	FindBook(ctx context.Context, barcode core.BarcodeString) (core.Book, error)

	// UpdateBook must fail with store.ErrRecordNotFound if available no longer equals readAvailable.
	UpdateBook(ctx context.Context, book core.Book, readAvailable int) error
}

// Result is the book as stored after the update.
type Result struct {
	shell.HandlerResult
	Book core.Book
}

// CommandHandler orchestrates the update workflow: Read -> Decide -> Write, retried on concurrent changes.
type CommandHandler struct {
	books        BookStore
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions adds options to the retry of concurrent changes, e.g. shell.WithMetrics.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = append(h.retryOptions, opts...)
	}
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(books BookStore, opts ...Option) CommandHandler {
	h := CommandHandler{books: books}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// Handle executes the update workflow. Business rule violations are returned as core.Rejection errors.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var (
		stored     core.Book
		idempotent bool
	)

	retryOptions := append([]shell.RetryOption{shell.WithRetryIf(isConcurrentChange)}, h.retryOptions...)

	retryMetrics, err := shell.RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error {
			current, err := h.findBook(ctx, command.Barcode)
			if err != nil {
				return err
			}

			result := Decide(current, command)
			if err := result.HasError(); err != nil {
				return err
			}

			if !result.HasStateChange() {
				stored, idempotent = *current, true
				return nil
			}

			if err := h.books.UpdateBook(ctx, result.Value, current.Available); err != nil {
				return err
			}

			stored, idempotent = result.Value, false

			return nil
		},
		retryOptions...,
	)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	if idempotent {
		return Result{HandlerResult: shell.NewIdempotentResult(retryMetrics), Book: stored}, nil
	}

	return Result{HandlerResult: shell.NewSuccessResult(retryMetrics), Book: stored}, nil
}

func (h CommandHandler) findBook(ctx context.Context, barcode core.BarcodeString) (*core.Book, error) {
	book, err := h.books.FindBook(ctx, barcode)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}

	return &book, nil
}

func isConcurrentChange(err error) bool {
	return errors.Is(err, store.ErrRecordNotFound)
}
