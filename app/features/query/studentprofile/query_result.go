package studentprofile

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

// StudentProfile represents the query result.
type StudentProfile struct {
	Student       core.Student       `json:"student"`
	BorrowedBooks []core.Transaction `json:"borrowed_books"`
}
