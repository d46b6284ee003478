package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Tx is the unit of work the command handlers run their read-check-write sequences in.
// Everything done through one Tx commits or rolls back together.
type Tx interface {
	// ReserveCopy decrements the book's inventory by one if, and only if, it is positive.
	// Fails with core.ErrOutOfStock when no copy is left and core.ErrBookNotFound for an unknown book.
	ReserveCopy(ctx context.Context, bookID uuid.UUID) error

	// ReleaseCopy increments the book's inventory by one. There is no upper bound.
	ReleaseCopy(ctx context.Context, bookID uuid.UUID) error

	BookByID(ctx context.Context, bookID uuid.UUID) (core.Book, error)

	// LockBorrowing reads a borrowing and holds it against concurrent transitions until the Tx ends.
	LockBorrowing(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error)

	HasActiveBorrowing(ctx context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error)

	// InsertBorrowing fails with core.ErrDuplicateActiveBorrowing when the user already has an
	// open borrowing of the book, and with core.ErrInvalidDateRange when the dates are out of order.
	InsertBorrowing(ctx context.Context, borrowing core.Borrowing) error

	// CloseBorrowing sets the actual return date of an open borrowing.
	// Fails with ErrConcurrencyConflict when the borrowing is no longer open.
	CloseBorrowing(ctx context.Context, borrowingID uuid.UUID, returnDate core.Date) error

	// PaymentOfType returns the borrowing's payment of the given type, if any.
	PaymentOfType(ctx context.Context, borrowingID uuid.UUID, paymentType core.PaymentType) (core.Payment, bool, error)

	// InsertPayment fails with ErrDuplicatePayment when the borrowing already has a payment of this type.
	InsertPayment(ctx context.Context, payment core.Payment) error

	// ReplacePendingSession points a PENDING payment at a new checkout session for amount.
	// Fails with ErrConcurrencyConflict when the payment is no longer PENDING on stale's session.
	ReplacePendingSession(ctx context.Context, stale core.Payment, session core.CheckoutSession, amount decimal.Decimal) error

	// LockPaymentBySessionID reads a payment and holds it against concurrent completion until the Tx ends.
	LockPaymentBySessionID(ctx context.Context, sessionID string) (core.Payment, error)

	// MarkPaymentCompleted flips a PENDING payment to COMPLETED.
	// Fails with ErrConcurrencyConflict when the payment is no longer PENDING.
	MarkPaymentCompleted(ctx context.Context, paymentID uuid.UUID, completedAt time.Time) error
}

// TxFunc is the body of a transaction. Returning an error rolls the transaction back.
type TxFunc func(ctx context.Context, tx Tx) error

// BorrowingFilter narrows a borrowing listing. Nil fields do not filter.
type BorrowingFilter struct {
	UserID    *uuid.UUID
	BookID    *uuid.UUID
	IsActive  *bool
	OverdueOn *core.Date // open and expected back on or before this date
}

// PaymentFilter narrows a payment listing. Nil fields do not filter.
type PaymentFilter struct {
	UserID      *uuid.UUID // owner of the payment's borrowing
	BorrowingID *uuid.UUID
}

// ChannelLink ties a user to the notification channel the notifier delivers to.
type ChannelLink struct {
	UserID    uuid.UUID
	ChannelID string
}
