package updatestudent

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
	FindStudent(ctx context.Context, barcode core.BarcodeString) (core.Student, error)

	// UpdateStudent writes the descriptive attributes and the active flag, not the reward counters.
	UpdateStudent(ctx context.Context, student core.Student) error
}

// Result is the student after the update.
type Result struct {
	shell.HandlerResult
	Student core.Student
}

// CommandHandler changes a student's details.
type CommandHandler struct {
	students StudentStore
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(students StudentStore) CommandHandler {
	return CommandHandler{students: students}
}

// Handle reads the student, revises it and writes it back.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	revised, err := h.revise(ctx, command)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	if err := h.students.UpdateStudent(ctx, revised); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			err = core.Reject(core.ErrNotFound, failureReasonStudentNotFound)
		}

		return Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(err))}, err
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(shell.SingleAttempt(nil)),
		Student:       revised,
	}, nil
}

func (h CommandHandler) revise(ctx context.Context, command Command) (core.Student, error) {
	student, err := h.students.FindStudent(ctx, command.Barcode)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return core.Student{}, core.Reject(core.ErrNotFound, failureReasonStudentNotFound)
	case err != nil:
		return core.Student{}, err
	}

	return student.Revise(command.Details, command.Active)
}
