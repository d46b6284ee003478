package shell

import (
	"context"
)

// Command represents the contract for all command types of the rental engine.
// Each command encapsulates the intent and parameters needed to execute a specific business operation.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CommandResult is implemented by every command handler result.
// Results embed HandlerResult, which provides Metadata.
type CommandResult interface {
	Metadata() HandlerResult
}

// CoreCommandHandler defines the contract for components that process commands.
// Handlers orchestrate the complete command workflow: reading state in a transaction, deciding,
// writing, and emitting events after commit.
// The generic parameters C and R ensure type safety between commands and their corresponding results.
// This interface is designed to be wrapped with observability decorators for complete functionality.
type CoreCommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// Query represents the contract for all query types of the rental engine.
// Each query encapsulates the parameters needed to read a specific view.
type Query interface {
	QueryType() string
}

// QueryHandler defines the contract for components that process queries and return read models.
// The generic parameters Q and R ensure type safety between queries and their corresponding results.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
