// Package store provides the persistence contract of the circulation service:
// the Inventory Store (books and students keyed by barcode) and the Transaction Ledger (loans).
//
// This package defines the interfaces that the loan engine consumes, the sentinel errors
// that implementations return, and the dependency-free observability interfaces that
// implementations accept. The SQL implementation lives in the sqlengine sub-package and
// OpenTelemetry implementations of the observability interfaces in oteladapters.
//
// Multi-step mutations run as one unit of work:
//
//	err := engine.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
//		book, err := tx.FindBook(ctx, "BK001")
//		if err != nil {
//			return err
//		}
//
//		applied, err := tx.UpdateBookAvailable(ctx, book.Barcode, -1)
//		...
//	})
//
// Returning an error from the callback rolls back everything the callback wrote.
package store
