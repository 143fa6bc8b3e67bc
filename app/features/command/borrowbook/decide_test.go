package borrowbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/features/command/borrowbook"
	"github.com/readingcorner/library-circulation/app/shared/core"
)

func givenStudent(t *testing.T) *core.Student {
	student, err := core.BuildStudent("s-1", "STU001", core.StudentDetails{Name: "Emma Wilson", Class: "5A"})
	require.NoError(t, err, "error in arranging test data")

	return &student
}

func givenBook(t *testing.T, available int) *core.Book {
	book, err := core.BuildBook("b-1", "BK001", core.BookDetails{Title: "Charlotte's Web"}, 2)
	require.NoError(t, err, "error in arranging test data")
	book.Available = available

	return &book
}

func Test_Decide_Success_WhenStudentAndAvailableBookExist(t *testing.T) {
	// arrange
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	command := borrowbook.BuildCommand("STU001", "BK001", now)
	state := borrowbook.State{Student: givenStudent(t), Book: givenBook(t, 1)}

	// act
	result := borrowbook.Decide(state, command, "loan-1")

	// assert
	require.NoError(t, result.HasError())
	assert.True(t, result.HasStateChange())
	assert.Equal(t, "loan-1", result.Value.ID)
	assert.Equal(t, "Emma Wilson", result.Value.StudentName)
	assert.Equal(t, "Charlotte's Web", result.Value.BookTitle)
	assert.Equal(t, core.LoanStatusBorrowed, result.Value.Status)
	assert.Equal(t, now.Add(15*24*time.Hour), result.Value.DueDate)
	assert.Zero(t, result.Value.OverdueDays)
	assert.Nil(t, result.Value.ReturnDate)
}

func Test_Decide_Error(t *testing.T) {
	now := time.Now()
	command := borrowbook.BuildCommand("STU001", "BK001", now)

	testCases := []struct {
		description string
		state       borrowbook.State
		kind        error
		reason      string
	}{
		{
			description: "student does not exist",
			state:       borrowbook.State{Book: givenBook(t, 1)},
			kind:        core.ErrNotFound,
			reason:      "student not found",
		},
		{
			description: "book does not exist",
			state:       borrowbook.State{Student: givenStudent(t)},
			kind:        core.ErrNotFound,
			reason:      "book not found",
		},
		{
			description: "no copy left",
			state:       borrowbook.State{Student: givenStudent(t), Book: givenBook(t, 0)},
			kind:        core.ErrIneligibleState,
			reason:      "book is not available",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			result := borrowbook.Decide(tc.state, command, "loan-1")

			// assert
			err := result.HasError()
			assert.ErrorIs(t, err, tc.kind)
			assert.EqualError(t, err, tc.reason)
			assert.False(t, result.HasStateChange())
		})
	}
}
