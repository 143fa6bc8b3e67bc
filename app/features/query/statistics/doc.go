// Package statistics implements the Statistics query use case that feeds the front desk dashboard.
//
// The overdue count is computed from the due dates at query time, never from the stored
// overdue days, so it is correct even if no reconcile ran recently.
package statistics
