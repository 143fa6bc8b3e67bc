package liststudents

const (
	queryType = "ListStudents"
)

// Query represents the intent to list all students.
type Query struct{}

// BuildQuery creates a new Query.
func BuildQuery() Query {
	return Query{}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
