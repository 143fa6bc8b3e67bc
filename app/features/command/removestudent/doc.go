// Package removestudent implements the Remove Student use case. Loans of the student stay in the
// ledger, a later return closes them without granting rewards.
package removestudent
