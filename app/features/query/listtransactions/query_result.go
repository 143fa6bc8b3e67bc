package listtransactions

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

// TransactionList represents the query result.
type TransactionList struct {
	Transactions []core.Transaction
	Count        int
}
