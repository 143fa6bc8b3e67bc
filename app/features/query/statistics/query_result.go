package statistics

// Statistics represents the dashboard counts.
type Statistics struct {
	TotalBooks     int `json:"total_books"`
	TotalAvailable int `json:"total_available"`
	BorrowedCount  int `json:"borrowed_count"`
	ActiveStudents int `json:"active_students"`
	OverdueCount   int `json:"overdue_count"`
}
