package reconcileoverdue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/shared/core"
)

var now = time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)

func loanBorrowed(id string, daysAgo int, storedOverdueDays int) core.Transaction {
	loan := core.OpenLoan(
		id,
		core.Student{Barcode: "STU001", Name: "Emma Wilson"},
		core.Book{Barcode: "BK00" + id, Title: "Book " + id},
		now.Add(-time.Duration(daysAgo)*24*time.Hour),
	)
	loan.OverdueDays = storedOverdueDays

	return loan
}

func Test_Decide_ReturnsLoansWithStaleOverdueDays(t *testing.T) {
	// arrange
	openLoans := []core.Transaction{
		loanBorrowed("1", 3, 0),  // not due yet
		loanBorrowed("2", 20, 0), // 5 days overdue, stale
		loanBorrowed("3", 20, 5), // 5 days overdue, up to date
	}

	// act
	result := reconcileoverdue.Decide(openLoans, reconcileoverdue.BuildCommand(now))

	// assert
	require.True(t, result.HasStateChange())
	require.Len(t, result.Value, 1)
	assert.Equal(t, "2", result.Value[0].ID)
	assert.Equal(t, 5, result.Value[0].OverdueDays)
	assert.Equal(t, core.LoanStatusBorrowed, result.Value[0].Status)
}

func Test_Decide_Idempotent_WhenAllStoredValuesAreCurrent(t *testing.T) {
	// arrange
	openLoans := []core.Transaction{
		loanBorrowed("1", 3, 0),
		loanBorrowed("2", 20, 5),
	}

	// act
	result := reconcileoverdue.Decide(openLoans, reconcileoverdue.BuildCommand(now))

	// assert
	assert.False(t, result.HasStateChange())
	assert.NoError(t, result.HasError())
}

func Test_Decide_NeverDecrementsOverdueDays(t *testing.T) {
	// arrange
	openLoans := []core.Transaction{loanBorrowed("1", 20, 9)}

	// act
	result := reconcileoverdue.Decide(openLoans, reconcileoverdue.BuildCommand(now))
	overdue := reconcileoverdue.ProjectOverdue(openLoans, reconcileoverdue.BuildCommand(now))

	// assert
	assert.False(t, result.HasStateChange())
	require.Len(t, overdue, 1)
	assert.Equal(t, 9, overdue[0].OverdueDays)
}

func Test_ProjectOverdue_ExcludesLoansDueExactlyNow(t *testing.T) {
	// arrange
	openLoans := []core.Transaction{
		loanBorrowed("1", 15, 0),
		loanBorrowed("2", 16, 0),
	}

	// act
	overdue := reconcileoverdue.ProjectOverdue(openLoans, reconcileoverdue.BuildCommand(now))

	// assert
	require.Len(t, overdue, 1)
	assert.Equal(t, "2", overdue[0].ID)
	assert.Equal(t, 1, overdue[0].OverdueDays)
}
