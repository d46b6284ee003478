package createborrowing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	logMsgRentalPaymentFailed = "rental fee checkout could not be opened"
	logAttrBorrowingID        = "borrowing_id"
)

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	InTx(ctx context.Context, fn store.TxFunc) error
	EarliestExpectedReturn(ctx context.Context, bookID uuid.UUID) (*core.Date, error)
	ChannelOf(ctx context.Context, userID uuid.UUID) (string, bool, error)
}

// PaymentInitiator opens the checkout for a charge against a borrowing.
type PaymentInitiator interface {
	Initiate(ctx context.Context, borrowing core.Borrowing, amount decimal.Decimal, paymentType core.PaymentType) (core.PaymentHandle, error)
}

// CommandHandler orchestrates the borrow workflow: read -> Decide -> reserve and insert, with retry.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	store            Store
	publisher        shell.EventPublisher
	payments         PaymentInitiator
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

// WithEventPublisher sets where the BorrowingCreated notice goes after commit.
func WithEventPublisher(publisher shell.EventPublisher) Option {
	return func(h *CommandHandler) {
		h.publisher = publisher
	}
}

// WithRentalFeePayment makes the handler open the rental fee checkout after each borrowing.
func WithRentalFeePayment(payments PaymentInitiator) Option {
	return func(h *CommandHandler) {
		h.payments = payments
	}
}

// WithLogger sets the logger for failures that do not fail the command.
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

// Handle executes the borrow workflow with retry logic.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	if err := CheckDates(command); err != nil {
		return Result{HandlerResult: shell.NewErrorResult(shell.RetryMetrics{LastErrorType: "none"})}, err
	}

	var decision core.DecisionResult
	var book core.Book

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, book, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, h.unavailable(ctx, command.BookID, err)
	}

	result := Result{
		HandlerResult: shell.NewSuccessResult(retryMetrics),
		Borrowing:     command.Borrowing(),
	}

	h.publishCreated(ctx, command, decision)

	if h.payments != nil {
		fee := core.RentalFee(book.DailyFee, result.Borrowing.BorrowDate, result.Borrowing.ExpectedReturnDate)

		handle, payErr := h.payments.Initiate(ctx, result.Borrowing, fee, core.PaymentTypePayment)
		if payErr != nil {
			result.PaymentErr = payErr
			h.logWarn(logMsgRentalPaymentFailed, result.Borrowing.ID, payErr)
		} else {
			result.Payment = &handle
		}
	}

	return result, nil
}

// executeCommand contains the transactional part that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, core.Book, error) {
	var decision core.DecisionResult
	var book core.Book

	err := h.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error

		book, err = tx.BookByID(ctx, command.BookID)
		if err != nil {
			return err
		}

		active, err := tx.HasActiveBorrowing(ctx, command.UserID, command.BookID)
		if err != nil {
			return err
		}

		decision = Decide(book, active, command)
		if err = decision.HasError(); err != nil {
			return err
		}

		if err = tx.ReserveCopy(ctx, command.BookID); err != nil {
			return err
		}

		return tx.InsertBorrowing(ctx, command.Borrowing())
	})

	return decision, book, err
}

// unavailable turns an out-of-stock failure into a BookUnavailableError carrying the earliest
// expected return date of the book. The hint is best effort: a failed lookup leaves it empty.
func (h CommandHandler) unavailable(ctx context.Context, bookID uuid.UUID, err error) error {
	if !errors.Is(err, core.ErrOutOfStock) {
		return err
	}

	earliest, lookupErr := h.store.EarliestExpectedReturn(ctx, bookID)
	if lookupErr != nil {
		earliest = nil
	}

	return &core.BookUnavailableError{BookID: bookID, EarliestReturn: earliest}
}

func (h CommandHandler) publishCreated(ctx context.Context, command Command, decision core.DecisionResult) {
	created, ok := decision.Event.(core.BorrowingCreated)
	if !ok {
		return
	}

	if channelID, found, err := h.store.ChannelOf(ctx, command.UserID); err == nil && found {
		created = created.ToChannel(channelID)
	}

	shell.PublishEvents(ctx, h.publisher, h.logger, h.metricsCollector, created)
}

func (h CommandHandler) logWarn(msg string, borrowingID uuid.UUID, err error) {
	if h.logger != nil {
		h.logger.Warn(msg, logAttrBorrowingID, borrowingID.String(), shell.LogAttrError, err.Error())
	}
}
