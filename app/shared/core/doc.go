// Package core contains the domain model of a school library front desk:
// books, students and the loans (transactions) between them.
//
// Everything in here is pure. Loans are opened and closed, overdue days are computed and
// rewards are accrued by plain functions that take the current state plus a point in time
// and return the new state. Persistence, HTTP and observability live in the shell.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
