package listtransactions

import (
	"context"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
)

const failureReasonInvalidStatus = "Invalid status. Must be 'borrowed' or 'returned'"

// TransactionStore defines the interface needed by the QueryHandler.
type TransactionStore interface {
	ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]core.Transaction, error)
}

// QueryHandler lists loans.
type QueryHandler struct {
	transactions TransactionStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(transactions TransactionStore) QueryHandler {
	return QueryHandler{transactions: transactions}
}

// Handle validates the status filter and lists the matching loans.
func (h QueryHandler) Handle(ctx context.Context, query Query) (TransactionList, error) {
	if query.Status != "" && !query.Status.IsValid() {
		return TransactionList{}, core.Reject(core.ErrInvalidInput, failureReasonInvalidStatus)
	}

	transactions, err := h.transactions.ListTransactions(ctx, store.TransactionFilter{
		Status:         query.Status,
		StudentBarcode: query.StudentBarcode,
	})
	if err != nil {
		return TransactionList{}, err
	}

	return TransactionList{
		Transactions: transactions,
		Count:        len(transactions),
	}, nil
}
