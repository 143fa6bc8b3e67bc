// Package removebook implements the Remove Book use case.
//
// Removing a book does not touch its loans: they keep the title snapshot, and a later return
// closes the loan without restoring a copy.
package removebook
