package returnbook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	failureReasonNoOpenLoan = "no active borrow record found"
)

// Decide implements the business logic to close a loan. This is a pure function with no side effects.
// A nil openLoan means the student holds no open loan of the book.
//
// Business Rules:
//
//	GIVEN: the oldest open loan of the book to the student
//	WHEN: ReturnBook command is received
//	THEN: the loan is closed with status returned, the return date and the final overdue days
//	ERROR: "no active borrow record found" if there is no such open loan
func Decide(openLoan *core.Transaction, command Command) core.DecisionResult[core.Transaction] {
	if openLoan == nil || !openLoan.IsOpen() {
		return core.ErrorDecision[core.Transaction](core.Reject(core.ErrNotFound, failureReasonNoOpenLoan))
	}

	return core.SuccessDecision(openLoan.Close(command.OccurredAt))
}
