package registerstudent

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonDuplicateBarcode = "Student barcode already exists"

// StudentStore defines the interface needed by the CommandHandler.
type StudentStore interface {
	InsertStudent(ctx context.Context, student core.Student) error
}

// Result is the stored student.
type Result struct {
	shell.HandlerResult
	Student core.Student
}

// CommandHandler validates and stores a new student.
type CommandHandler struct {
	students StudentStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(students StudentStore) CommandHandler {
	return CommandHandler{students: students}
}

// Handle builds the student and inserts it. A barcode that is already taken is rejected as ineligible.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	student, err := core.BuildStudent(uuid.Must(uuid.NewV7()).String(), command.Barcode, command.Details)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	if err := h.students.InsertStudent(ctx, student); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			err = core.Reject(core.ErrIneligibleState, failureReasonDuplicateBarcode)
		}

		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil)),
		Student:       student,
	}, nil
}
