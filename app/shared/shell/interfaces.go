package shell

import (
	"context"
)

// Command represents the contract for all command types.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandResult is implemented by every command handler result by embedding HandlerResult.
type CommandResult interface {
	BusinessOutcome() string
	RetryMetadata() HandlerResult
}

// CommandHandler defines the contract for components that process commands.
// Core handlers contain only the business workflow; observable.CommandWrapper adds
// metrics, tracing and logging around them and satisfies the same interface.
type CommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that answer queries.
// Query handlers never write.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
