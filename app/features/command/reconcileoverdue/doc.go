// Package reconcileoverdue implements the Reconcile Overdue use case.
//
// It recomputes the overdue days of every open loan for the command time, persists the loans whose
// stored value is behind, and returns all open loans that are past their due date. Running it twice with
// the same time writes nothing the second time, which makes the outcome idempotent.
package reconcileoverdue
