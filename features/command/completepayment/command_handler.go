package completepayment

import (
	"context"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	InTx(ctx context.Context, fn store.TxFunc) error
}

// CommandHandler orchestrates the completion workflow: lock payment -> Decide -> mark completed
// (-> close and release for fines), with retry.
type CommandHandler struct {
	store            Store
	publisher        shell.EventPublisher
	logger           shell.Logger
	metricsCollector shell.MetricsCollector
	retryOptions     []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithEventPublisher sets where the completion notices go after commit.
func WithEventPublisher(publisher shell.EventPublisher) Option {
	return func(h *CommandHandler) {
		h.publisher = publisher
	}
}

// WithLogger sets the logger for publishing failures.
func WithLogger(logger shell.Logger) Option {
	return func(h *CommandHandler) {
		h.logger = logger
	}
}

// WithMetrics sets the metrics collector for event publishing.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *CommandHandler) {
		h.metricsCollector = collector
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

// Handle executes the completion workflow with retry logic.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool
	var events core.DomainEvents

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		isIdempotent, events, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics), nil
	}

	shell.PublishEvents(ctx, h.publisher, h.logger, h.metricsCollector, events...)

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the transactional part that can be retried.
// A concurrent completion of the same session surfaces as a concurrency conflict from
// MarkPaymentCompleted; the retry then reads COMPLETED and ends idempotently.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, core.DomainEvents, error) {
	var isIdempotent bool
	var events core.DomainEvents

	err := h.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		isIdempotent = false
		events = nil

		payment, err := tx.LockPaymentBySessionID(ctx, command.SessionID)
		if err != nil {
			return err
		}

		decision := Decide(payment, command)
		if decision.IsIdempotent() {
			isIdempotent = true
			return nil
		}

		if err = tx.MarkPaymentCompleted(ctx, payment.ID, command.OccurredAt); err != nil {
			return err
		}

		events = append(events, decision.Event)

		if payment.Type != core.PaymentTypeFine {
			return nil
		}

		borrowing, err := tx.LockBorrowing(ctx, payment.BorrowingID)
		if err != nil {
			return err
		}

		if !closesBorrowing(payment, borrowing) {
			return nil
		}

		if err = tx.CloseBorrowing(ctx, borrowing.ID, command.Today); err != nil {
			return err
		}

		if err = tx.ReleaseCopy(ctx, borrowing.BookID); err != nil {
			return err
		}

		events = append(events, core.BuildBorrowingReturned(borrowing, command.Today, command.OccurredAt))

		return nil
	})

	return isIdempotent, events, err
}
