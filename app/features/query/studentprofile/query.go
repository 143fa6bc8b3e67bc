package studentprofile

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	queryType = "StudentProfile"
)

// Query represents the intent to read one student's profile.
type Query struct {
	Barcode core.BarcodeString
}

// BuildQuery creates a new Query with the provided student barcode.
func BuildQuery(barcode core.BarcodeString) Query {
	return Query{Barcode: barcode}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
