package initiatepayment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	logMsgExpireFailed = "expiring checkout session failed"
	logAttrSessionID   = "session_id"
)

// ErrAlreadyPaid is returned when the borrowing's payment of the requested type is already COMPLETED.
var ErrAlreadyPaid = errors.New("payment has already been completed")

// CheckoutProvider opens hosted checkout sessions at the external payment provider
// and expires the ones no payment row points to anymore.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, request core.CheckoutRequest) (core.CheckoutSession, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// Store defines the store operations the Engine needs.
type Store interface {
	InTx(ctx context.Context, fn store.TxFunc) error
}

// Engine is the initiating half of the payment reconciliation.
type Engine struct {
	store        Store
	checkout     CheckoutProvider
	clock        func() time.Time
	logger       shell.Logger
	retryOptions []shell.RetryOption
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the time source for payment creation timestamps.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithEngineLogger sets the logger for sessions that could not be expired.
func WithEngineLogger(logger shell.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEngineRetryOptions sets a custom retry configuration for persisting payments.
func WithEngineRetryOptions(opts ...shell.RetryOption) EngineOption {
	return func(e *Engine) {
		e.retryOptions = opts
	}
}

// NewEngine creates a new Engine.
func NewEngine(s Store, checkout CheckoutProvider, opts ...EngineOption) Engine {
	engine := Engine{
		store:    s,
		checkout: checkout,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(&engine)
	}

	return engine
}

// Initiate opens a checkout session for amount and records it as a PENDING payment of paymentType.
//
//	ERROR: core.ErrInvalidAmount if amount is not positive
//	ERROR: ErrAlreadyPaid if the borrowing's payment of this type is COMPLETED
//	ERROR: core.ErrSessionCreationFailed if the provider fails, nothing is persisted then
//	REUSE: a PENDING payment of this type and amount is returned as is
//	REPRICE: a PENDING payment of another amount gets a new session, the old one is expired
func (e Engine) Initiate(
	ctx context.Context,
	borrowing core.Borrowing,
	amount decimal.Decimal,
	paymentType core.PaymentType,
) (core.PaymentHandle, error) {

	if !amount.IsPositive() {
		return core.PaymentHandle{}, core.ErrInvalidAmount
	}

	existing, found, err := e.existingPayment(ctx, borrowing.ID, paymentType)
	if err != nil {
		return core.PaymentHandle{}, err
	}

	if found && (existing.IsCompleted() || existing.Amount.Equal(amount)) {
		return handleOf(existing)
	}

	session, err := e.checkout.CreateSession(ctx, checkoutRequest(borrowing, amount, paymentType))
	if err != nil {
		return core.PaymentHandle{}, errors.Join(core.ErrSessionCreationFailed, err)
	}

	if found {
		return e.reprice(ctx, existing, session, amount)
	}

	return e.insert(ctx, borrowing, paymentType, session, amount)
}

func (e Engine) insert(
	ctx context.Context,
	borrowing core.Borrowing,
	paymentType core.PaymentType,
	session core.CheckoutSession,
	amount decimal.Decimal,
) (core.PaymentHandle, error) {

	payment := core.BuildPendingPayment(uuid.New(), borrowing.ID, paymentType, session, amount, e.clock())

	_, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return e.store.InTx(retryCtx, func(txCtx context.Context, tx store.Tx) error {
			return tx.InsertPayment(txCtx, payment)
		})
	}, e.retryOptions...)

	if err == nil {
		return payment.Handle(), nil
	}

	e.expire(ctx, session.ID)

	if !errors.Is(err, store.ErrDuplicatePayment) {
		return core.PaymentHandle{}, err
	}

	// a concurrent request won the race, its session is the one the user has to pay
	existing, found, readErr := e.existingPayment(ctx, borrowing.ID, paymentType)
	if readErr != nil {
		return core.PaymentHandle{}, readErr
	}

	if !found {
		return core.PaymentHandle{}, err
	}

	return handleOf(existing)
}

// reprice moves stale onto session and amount, unless stale was completed or moved in the meantime.
func (e Engine) reprice(
	ctx context.Context,
	stale core.Payment,
	session core.CheckoutSession,
	amount decimal.Decimal,
) (core.PaymentHandle, error) {

	var current core.Payment

	_, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return e.store.InTx(retryCtx, func(txCtx context.Context, tx store.Tx) error {
			var found bool
			var err error

			current, found, err = tx.PaymentOfType(txCtx, stale.BorrowingID, stale.Type)
			if err != nil {
				return err
			}

			if !found {
				return core.ErrPaymentNotFound
			}

			if current.IsCompleted() || current.SessionID != stale.SessionID {
				return nil
			}

			if err = tx.ReplacePendingSession(txCtx, current, session, amount); err != nil {
				return err
			}

			current.SessionID, current.SessionURL, current.Amount = session.ID, session.URL, amount

			return nil
		})
	}, e.retryOptions...)

	if err != nil {
		e.expire(ctx, session.ID)
		return core.PaymentHandle{}, err
	}

	if current.SessionID != session.ID {
		e.expire(ctx, session.ID)
		return handleOf(current)
	}

	e.expire(ctx, stale.SessionID)

	return current.Handle(), nil
}

// expire is best effort: an unexpired orphan session can still be paid, but no payment row matches it.
func (e Engine) expire(ctx context.Context, sessionID string) {
	err := e.checkout.ExpireSession(ctx, sessionID)
	if err != nil && e.logger != nil {
		e.logger.Warn(logMsgExpireFailed, logAttrSessionID, sessionID, shell.LogAttrError, err.Error())
	}
}

func (e Engine) existingPayment(
	ctx context.Context,
	borrowingID uuid.UUID,
	paymentType core.PaymentType,
) (core.Payment, bool, error) {

	var payment core.Payment
	var found bool

	err := e.store.InTx(ctx, func(txCtx context.Context, tx store.Tx) error {
		var err error
		payment, found, err = tx.PaymentOfType(txCtx, borrowingID, paymentType)

		return err
	})

	return payment, found, err
}

func handleOf(payment core.Payment) (core.PaymentHandle, error) {
	if payment.IsCompleted() {
		return core.PaymentHandle{}, ErrAlreadyPaid
	}

	return payment.Handle(), nil
}

func checkoutRequest(borrowing core.Borrowing, amount decimal.Decimal, paymentType core.PaymentType) core.CheckoutRequest {
	description := fmt.Sprintf("Rental fee for borrowing %s", borrowing.ID)
	if paymentType == core.PaymentTypeFine {
		description = fmt.Sprintf("Late return fine for borrowing %s", borrowing.ID)
	}

	return core.CheckoutRequest{
		Reference:   borrowing.ID.String(),
		Amount:      amount,
		Description: description,
	}
}
