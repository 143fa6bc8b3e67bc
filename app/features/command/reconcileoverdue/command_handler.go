package reconcileoverdue

import (
	"context"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

// Result lists the overdue loans after reconciliation.
type Result struct {
	shell.HandlerResult
	Overdue []core.Transaction

	// Updated is the number of loans whose overdue days were written.
	Updated int
}

// CommandHandler orchestrates the reconcile workflow: Read -> Decide -> Write, inside one unit of work.
type CommandHandler struct {
	uow store.UnitOfWork
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(uow store.UnitOfWork) CommandHandler {
	return CommandHandler{uow: uow}
}

// Handle executes the reconcile workflow.
// A loan closed by a concurrent return between the read and the write is skipped, not counted.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var (
		overdue []core.Transaction
		updated int
	)

	err := h.uow.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		openLoans, err := tx.FindAllOpenTransactions(ctx)
		if err != nil {
			return err
		}

		overdue = ProjectOverdue(openLoans, command)

		result := Decide(openLoans, command)
		if !result.HasStateChange() {
			return nil
		}

		for _, loan := range result.Value {
			applied, err := tx.UpdateTransaction(ctx, loan)
			if err != nil {
				return err
			}

			if applied {
				updated++
			}
		}

		return nil
	})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	handlerResult := shell.NewSuccessResult(shell.SingleAttempt(nil))
	if updated == 0 {
		handlerResult = shell.NewIdempotentResult(shell.SingleAttempt(nil))
	}

	return Result{
		HandlerResult: handlerResult,
		Overdue:       overdue,
		Updated:       updated,
	}, nil
}
