package core

import "time"

// LoanPeriod is the time a student may keep a borrowed book.
const LoanPeriod = 15 * 24 * time.Hour

// LoanStatus is the lifecycle state of a Transaction.
type LoanStatus string

const (
	// LoanStatusBorrowed marks an open loan.
	LoanStatusBorrowed LoanStatus = "borrowed"

	// LoanStatusReturned marks a closed loan.
	LoanStatusReturned LoanStatus = "returned"
)

// IsValid reports whether s is a known status.
func (s LoanStatus) IsValid() bool {
	return s == LoanStatusBorrowed || s == LoanStatusReturned
}

// Transaction is one loan of one copy of a book to a student.
// The student name and the book title are snapshots taken when the loan is opened.
type Transaction struct {
	ID             string        `json:"id"`
	StudentBarcode BarcodeString `json:"student_barcode"`
	StudentName    string        `json:"student_name"`
	BookBarcode    BarcodeString `json:"book_barcode"`
	BookTitle      string        `json:"book_title"`
	BorrowDate     time.Time     `json:"borrow_date"`
	DueDate        time.Time     `json:"due_date"`
	ReturnDate     *time.Time    `json:"return_date"`
	Status         LoanStatus    `json:"status"`
	OverdueDays    int           `json:"overdue_days"`
}

// OpenLoan creates the Transaction for lending book to student at borrowedAt.
func OpenLoan(id string, student Student, book Book, borrowedAt time.Time) Transaction {
	borrowDate := ToOccurredAt(borrowedAt)

	return Transaction{
		ID:             id,
		StudentBarcode: student.Barcode,
		StudentName:    student.Name,
		BookBarcode:    book.Barcode,
		BookTitle:      book.Title,
		BorrowDate:     borrowDate,
		DueDate:        borrowDate.Add(LoanPeriod),
		Status:         LoanStatusBorrowed,
	}
}

// IsOpen reports whether the loan has not been returned yet.
func (t Transaction) IsOpen() bool {
	return t.Status == LoanStatusBorrowed
}

// Close returns the loan closed at returnedAt, with the final overdue days.
func (t Transaction) Close(returnedAt time.Time) Transaction {
	returnDate := ToOccurredAt(returnedAt)

	t.ReturnDate = &returnDate
	t.Status = LoanStatusReturned
	t.OverdueDays = OverdueDays(t.DueDate, returnDate)

	return t
}
