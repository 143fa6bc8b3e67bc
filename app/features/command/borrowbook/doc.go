// Package borrowbook implements the Borrow Book use case.
//
// A student borrows one copy of a book for core.LoanPeriod. The handler reads the student and the
// book inside one database transaction, lets the pure Decide function open the loan, then takes
// the copy with a conditional decrement and writes the loan. If a concurrent borrow took the last copy
// in between, the decrement reports that nothing changed and the whole transaction rolls back.
package borrowbook
