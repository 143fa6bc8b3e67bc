// Package seed fills an empty database with the demo data of a small school library:
// five students, ten books, one overdue loan and the front desk admin account.
package seed
