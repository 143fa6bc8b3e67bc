package reconcileoverdue

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

// Decide implements the overdue scan. This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: all open loans
//	WHEN: ReconcileOverdue command is received
//	THEN: every loan past its due date gets overdue days = whole days since the due date
//	THEN: the loans whose stored value changed are returned for persistence
//	IDEMPOTENT: if no stored value changes, nothing needs to be written
//	INVARIANT: overdue days of an open loan never decrease
func Decide(openLoans []core.Transaction, command Command) core.DecisionResult[[]core.Transaction] {
	changed := make([]core.Transaction, 0)

	for _, loan := range openLoans {
		if refreshed := loan.RefreshOverdue(command.OccurredAt); refreshed.OverdueDays != loan.OverdueDays {
			changed = append(changed, refreshed)
		}
	}

	if len(changed) == 0 {
		return core.IdempotentDecision[[]core.Transaction]()
	}

	return core.SuccessDecision(changed)
}

// ProjectOverdue returns the open loans that are past their due date at the command time,
// with their overdue days refreshed, in the order given.
func ProjectOverdue(openLoans []core.Transaction, command Command) []core.Transaction {
	overdue := make([]core.Transaction, 0)

	for _, loan := range openLoans {
		if loan.IsOverdueAt(command.OccurredAt) {
			overdue = append(overdue, loan.RefreshOverdue(command.OccurredAt))
		}
	}

	return overdue
}
