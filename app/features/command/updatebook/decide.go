package updatebook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	failureReasonBookNotFound = "Book not found"
)

// Decide implements the business logic of a book update. This is a pure function with no side effects.
// A nil book means the barcode does not resolve.
//
// Business Rules:
//
//	GIVEN: the current book
//	WHEN: UpdateBook command is received
//	THEN: details are replaced, an empty cover keeps the current one
//	THEN: a changed number of copies moves available by the same delta
//	ERROR: "Book not found" if the book does not exist
//	ERROR: invalid input if the title is empty or fewer than one copy is requested
//	ERROR: ineligible state if fewer copies than currently lent out would remain
func Decide(book *core.Book, command Command) core.DecisionResult[core.Book] {
	if book == nil {
		return core.ErrorDecision[core.Book](core.Reject(core.ErrNotFound, failureReasonBookNotFound))
	}

	revised, err := book.Revise(command.Details, command.TotalCopies)
	if err != nil {
		return core.ErrorDecision[core.Book](err)
	}

	if revised == *book {
		return core.IdempotentDecision[core.Book]()
	}

	return core.SuccessDecision(revised)
}
