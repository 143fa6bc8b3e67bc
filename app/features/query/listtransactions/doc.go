// Package listtransactions implements the List Transactions query use case.
//
// It returns the loans, newest first, optionally narrowed to one status or one student.
// This is a read-only operation, it does not refresh overdue days.
package listtransactions
