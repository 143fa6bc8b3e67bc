package liststudents

import (
	"context"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

// StudentStore defines the interface needed by the QueryHandler.
type StudentStore interface {
	ListStudents(ctx context.Context) ([]core.Student, error)
}

// QueryHandler lists students ordered by barcode.
type QueryHandler struct {
	students StudentStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(students StudentStore) QueryHandler {
	return QueryHandler{students: students}
}

// Handle lists all students, active or not.
func (h QueryHandler) Handle(ctx context.Context, _ Query) ([]core.Student, error) {
	return h.students.ListStudents(ctx)
}
