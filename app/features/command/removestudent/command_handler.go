package removestudent

import (
	"context"
	"errors"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonStudentNotFound = "Student not found"

// StudentStore defines the interface needed by the CommandHandler.
type StudentStore interface {
	DeleteStudent(ctx context.Context, barcode core.BarcodeString) error
}

// Result carries only the handler metadata.
type Result struct {
	shell.HandlerResult
}

// CommandHandler deletes a student.
type CommandHandler struct {
	students StudentStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(students StudentStore) CommandHandler {
	return CommandHandler{students: students}
}

// Handle deletes the student, an unknown barcode is rejected as not found.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := h.students.DeleteStudent(ctx, command.Barcode); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			err = core.Reject(core.ErrNotFound, failureReasonStudentNotFound)
		}

		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil))}, nil
}
