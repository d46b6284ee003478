package returnborrowing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	InTx(ctx context.Context, fn store.TxFunc) error
}

// PaymentInitiator opens the checkout for a charge against a borrowing.
type PaymentInitiator interface {
	Initiate(ctx context.Context, borrowing core.Borrowing, amount decimal.Decimal, paymentType core.PaymentType) (core.PaymentHandle, error)
}

// CommandHandler orchestrates the return workflow: lock and read -> Decide -> close and release, with retry.
// The fine checkout is opened after the transaction, never while it holds locks.
type CommandHandler struct {
	store            Store
	payments         PaymentInitiator
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

// WithEventPublisher sets where the return and fine notices go after commit.
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
func NewCommandHandler(s Store, payments PaymentInitiator, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:    s,
		payments: payments,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the return workflow with retry logic.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var decision core.DecisionResult
	var borrowing core.Borrowing

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, borrowing, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	if decision.IsPaymentRequired() {
		handle, payErr := h.payments.Initiate(ctx, borrowing, decision.Charge, core.PaymentTypeFine)
		if payErr != nil {
			return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, payErr
		}

		shell.PublishEvents(ctx, h.publisher, h.logger, h.metricsCollector,
			core.BuildFinePaymentRequested(borrowing, handle, command.Today, command.OccurredAt))

		return Result{
			HandlerResult:   shell.NewSuccessResult(retryMetrics),
			Borrowing:       borrowing,
			PaymentRequired: true,
			Payment:         &handle,
		}, nil
	}

	shell.PublishEvents(ctx, h.publisher, h.logger, h.metricsCollector, decision.Event)

	return Result{
		HandlerResult: shell.NewSuccessResult(retryMetrics),
		Borrowing:     borrowing.ClosedOn(command.Today),
	}, nil
}

// executeCommand contains the transactional part that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, core.Borrowing, error) {
	var decision core.DecisionResult
	var borrowing core.Borrowing

	err := h.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error

		borrowing, err = tx.LockBorrowing(ctx, command.BorrowingID)
		if err != nil {
			return err
		}

		book, err := tx.BookByID(ctx, borrowing.BookID)
		if err != nil {
			return err
		}

		var fine *core.Payment

		payment, found, err := tx.PaymentOfType(ctx, borrowing.ID, core.PaymentTypeFine)
		if err != nil {
			return err
		}

		if found {
			fine = &payment
		}

		decision = Decide(borrowing, book, fine, command)
		if err = decision.HasError(); err != nil {
			return err
		}

		if decision.IsPaymentRequired() {
			return nil
		}

		if err = tx.CloseBorrowing(ctx, borrowing.ID, command.Today); err != nil {
			return err
		}

		return tx.ReleaseCopy(ctx, borrowing.BookID)
	})

	return decision, borrowing, err
}
