package studentprofile

import (
	"context"
	"errors"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonStudentNotFound = "Student not found"

// ProfileStore defines the interface needed by the QueryHandler.
type ProfileStore interface {
	FindStudent(ctx context.Context, barcode core.BarcodeString) (core.Student, error)
	ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]core.Transaction, error)
}

// QueryHandler reads a student's profile.
type QueryHandler struct {
	profiles ProfileStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(profiles ProfileStore) QueryHandler {
	return QueryHandler{profiles: profiles}
}

// Handle returns the student and their open loans, an unknown barcode is rejected as not found.
func (h QueryHandler) Handle(ctx context.Context, query Query) (StudentProfile, error) {
	student, err := h.profiles.FindStudent(ctx, query.Barcode)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return StudentProfile{}, core.Reject(core.ErrNotFound, failureReasonStudentNotFound)
	case err != nil:
		return StudentProfile{}, err
	}

	borrowed, err := h.profiles.ListTransactions(ctx, store.TransactionFilter{
		Status:         core.LoanStatusBorrowed,
		StudentBarcode: query.Barcode,
	})
	if err != nil {
		return StudentProfile{}, err
	}

	return StudentProfile{
		Student:       student,
		BorrowedBooks: borrowed,
	}, nil
}
