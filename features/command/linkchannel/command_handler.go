package linkchannel

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	ChannelOf(ctx context.Context, userID uuid.UUID) (string, bool, error)
	LinkChannel(ctx context.Context, link store.ChannelLink) error
}

// CommandHandler links, or relinks, a user's notification channel.
// Linking the channel that is already linked is an idempotent no-op.
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

// Handle executes the link workflow with retry logic.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if command.ChannelID == "" {
		return Result{HandlerResult: shell.NewErrorResult(shell.RetryMetrics{LastErrorType: "none"})}, ErrEmptyChannelID
	}

	var unchanged bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		current, linked, err := h.store.ChannelOf(retryCtx, command.UserID)
		if err != nil {
			return err
		}

		if linked && current == command.ChannelID {
			unchanged = true
			return nil
		}

		return h.store.LinkChannel(retryCtx, command.Link())
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	if unchanged {
		return Result{HandlerResult: shell.NewIdempotentResult(retryMetrics), Link: command.Link()}, nil
	}

	return Result{HandlerResult: shell.NewSuccessResult(retryMetrics), Link: command.Link()}, nil
}
