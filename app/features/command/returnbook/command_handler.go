package returnbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const (
	messageOnTime  = "Book returned successfully!"
	messageOverdue = "Book returned! %d days overdue."
)

// Result is the closed loan together with what happened to the inventory and the student.
type Result struct {
	shell.HandlerResult
	Transaction core.Transaction
	Message     string

	// InventoryRestored is false if the book was deleted while the loan was open.
	InventoryRestored bool

	// RewardsApplied is false if the student was deleted while the loan was open.
	RewardsApplied bool

	// Stats are the student's counters after the return, zero if RewardsApplied is false.
	Stats core.ReaderStats
}

// CommandHandler orchestrates the return workflow: Read -> Decide -> Write, inside one unit of work.
type CommandHandler struct {
	uow store.UnitOfWork
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(uow store.UnitOfWork) CommandHandler {
	return CommandHandler{uow: uow}
}

// Handle executes the return workflow. Business rule violations are returned as core.Rejection errors.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := h.uow.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		openLoan, err := findOpenLoan(ctx, tx, command)
		if err != nil {
			return err
		}

		decision := Decide(openLoan, command)
		if err := decision.HasError(); err != nil {
			return err
		}

		closed := decision.Value

		applied, err := tx.UpdateTransaction(ctx, closed)
		if err != nil {
			return err
		}

		if !applied {
			return core.Reject(core.ErrNotFound, failureReasonNoOpenLoan)
		}

		restored, err := tx.UpdateBookAvailable(ctx, closed.BookBarcode, +1)
		if err != nil {
			return err
		}

		result = Result{
			Transaction:       closed,
			InventoryRestored: restored,
		}

		student, err := tx.FindStudentForUpdate(ctx, closed.StudentBarcode)
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil
		case err != nil:
			return err
		}

		stats := core.ApplyReturnRewards(student.Stats(), closed.OverdueDays)
		if err := tx.UpdateStudentStats(ctx, closed.StudentBarcode, stats); err != nil {
			return err
		}

		result.RewardsApplied = true
		result.Stats = stats

		return nil
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	result.HandlerResult = shell.NewSuccessResult(shell.SingleAttempt(nil))
	result.Message = message(result.Transaction.OverdueDays)

	return result, nil
}

func findOpenLoan(ctx context.Context, tx store.Tx, command Command) (*core.Transaction, error) {
	loan, err := tx.FindOpenTransaction(ctx, command.StudentBarcode, command.BookBarcode)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}

	return &loan, nil
}

func message(overdueDays int) string {
	if overdueDays > 0 {
		return fmt.Sprintf(messageOverdue, overdueDays)
	}

	return messageOnTime
}
