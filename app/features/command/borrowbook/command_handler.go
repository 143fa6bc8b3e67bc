package borrowbook

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const successMessage = "Book borrowed successfully!"

// Result is the opened loan.
type Result struct {
	shell.HandlerResult
	Transaction core.Transaction
	Message     string
}

// CommandHandler orchestrates the borrow workflow: Read -> Decide -> Write, inside one unit of work.
type CommandHandler struct {
	uow   store.UnitOfWork
	newID func() string
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithIDGenerator replaces the generator of loan ids, uuid v7 by default.
func WithIDGenerator(newID func() string) Option {
	return func(h *CommandHandler) {
		h.newID = newID
	}
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(uow store.UnitOfWork, opts ...Option) CommandHandler {
	handler := CommandHandler{
		uow:   uow,
		newID: newLoanID,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the borrow workflow. Business rule violations are returned as core.Rejection errors.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var loan core.Transaction

	err := h.uow.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		s, err := readState(ctx, tx, command)
		if err != nil {
			return err
		}

		result := Decide(s, command, h.newID())
		if err := result.HasError(); err != nil {
			return err
		}

		applied, err := tx.UpdateBookAvailable(ctx, command.BookBarcode, -1)
		if err != nil {
			return err
		}

		if !applied {
			return core.Reject(core.ErrIneligibleState, failureReasonBookUnavailable)
		}

		if err := tx.CreateTransaction(ctx, result.Value); err != nil {
			return err
		}

		loan = result.Value

		return nil
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil)),
		Transaction:   loan,
		Message:       successMessage,
	}, nil
}

func readState(ctx context.Context, tx store.Tx, command Command) (State, error) {
	var s State

	student, err := tx.FindStudent(ctx, command.StudentBarcode)
	switch {
	case err == nil:
		s.Student = &student
	case !errors.Is(err, store.ErrRecordNotFound):
		return State{}, err
	}

	book, err := tx.FindBook(ctx, command.BookBarcode)
	switch {
	case err == nil:
		s.Book = &book
	case !errors.Is(err, store.ErrRecordNotFound):
		return State{}, err
	}

	return s, nil
}

func newLoanID() string {
	return uuid.Must(uuid.NewV7()).String()
}
