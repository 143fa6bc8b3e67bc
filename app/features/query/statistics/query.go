package statistics

import (
	"time"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	queryType = "Statistics"
)

// Query represents the intent to read the dashboard counts as of a point in time.
type Query struct {
	AsOf core.OccurredAt
}

// BuildQuery creates a new Query for the given time.
func BuildQuery(asOf time.Time) Query {
	return Query{
		AsOf: core.ToOccurredAt(asOf),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
