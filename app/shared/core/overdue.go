package core

import "time"

const day = 24 * time.Hour

// OverdueDays returns the whole days elapsed from due until at, truncated toward zero and never negative.
func OverdueDays(due, at time.Time) int {
	if !at.After(due) {
		return 0
	}

	return int(at.Sub(due) / day)
}

// IsOverdueAt reports whether an open loan is past its due date at the given time.
// A loan due at exactly now is not overdue yet.
func (t Transaction) IsOverdueAt(now time.Time) bool {
	return t.IsOpen() && now.After(t.DueDate)
}

// RefreshOverdue returns the open loan with overdue days recomputed for now.
// Overdue days of an open loan never decrease, so a clock running behind the stored value changes nothing.
func (t Transaction) RefreshOverdue(now time.Time) Transaction {
	if !t.IsOpen() {
		return t
	}

	if days := OverdueDays(t.DueDate, now); days > t.OverdueDays {
		t.OverdueDays = days
	}

	return t
}
