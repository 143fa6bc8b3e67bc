package borrowbook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	failureReasonStudentNotFound = "student not found"
	failureReasonBookNotFound    = "book not found"
	failureReasonBookUnavailable = "book is not available"
)

// State is what the handler read before deciding. A nil pointer means the record does not exist.
type State struct {
	Student *core.Student
	Book    *core.Book
}

// Decide implements the business logic to determine whether a book may be lent to a student.
// This is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: a student and a book, identified by barcode
//	WHEN: BorrowBook command is received
//	THEN: a loan is opened, due core.LoanPeriod after the command time
//	ERROR: "student not found" if the student does not exist
//	ERROR: "book not found" if the book does not exist
//	ERROR: "book is not available" if no copy is left
//
// A student may hold several open loans of the same book.
func Decide(s State, command Command, loanID string) core.DecisionResult[core.Transaction] {
	if s.Student == nil {
		return core.ErrorDecision[core.Transaction](core.Reject(core.ErrNotFound, failureReasonStudentNotFound))
	}

	if s.Book == nil {
		return core.ErrorDecision[core.Transaction](core.Reject(core.ErrNotFound, failureReasonBookNotFound))
	}

	if !s.Book.IsAvailable() {
		return core.ErrorDecision[core.Transaction](core.Reject(core.ErrIneligibleState, failureReasonBookUnavailable))
	}

	return core.SuccessDecision(core.OpenLoan(loanID, *s.Student, *s.Book, command.OccurredAt))
}
