package addbook

import (
	"context"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	AddBook(ctx context.Context, book core.Book) error
}

// CommandHandler validates and stores a new catalog entry.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(s Store, opts ...Option) CommandHandler {
	handler := CommandHandler{store: s}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle validates the command and stores the book.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := command.Validate(); err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.RetryMetrics{LastErrorType: "none"})}, err
	}

	book := command.Book()

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.AddBook(retryCtx, book)
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(retryMetrics), Book: book}, nil
}
