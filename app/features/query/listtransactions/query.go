package listtransactions

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	queryType = "ListTransactions"
)

// Query represents the intent to list loans. Empty fields do not filter.
type Query struct {
	Status         core.LoanStatus
	StudentBarcode core.BarcodeString
}

// BuildQuery creates a new Query with the provided filters.
func BuildQuery(status string, studentBarcode core.BarcodeString) Query {
	return Query{
		Status:         core.LoanStatus(status),
		StudentBarcode: studentBarcode,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
