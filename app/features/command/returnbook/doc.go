// Package returnbook implements the Return Book use case.
//
// The oldest open loan of the book to the student is closed with its final overdue days. In the same
// unit of work one copy goes back to the inventory and the reward engine updates the student's stars,
// books read and badges. Because the loan is closed with a conditional update, a second concurrent
// return of the same loan finds nothing to close and fails without granting rewards twice.
package returnbook
