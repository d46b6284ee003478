package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType tells what a payment is charged for.
type PaymentType string

const (
	// PaymentTypePayment is the rental fee charged when a book is borrowed.
	PaymentTypePayment PaymentType = "PAYMENT"

	// PaymentTypeFine is the charge for returning a book late.
	PaymentTypeFine PaymentType = "FINE"
)

// PaymentStatus is the position of a payment in its PENDING -> COMPLETED lifecycle.
type PaymentStatus string

const (
	// PaymentStatusPending means a checkout session was opened and not yet confirmed.
	PaymentStatusPending PaymentStatus = "PENDING"

	// PaymentStatusCompleted means the checkout provider confirmed the session.
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// Payment is a charge against a borrowing, settled through an external checkout session.
type Payment struct {
	ID          uuid.UUID
	BorrowingID uuid.UUID
	Type        PaymentType
	Status      PaymentStatus
	SessionID   string
	SessionURL  string
	Amount      decimal.Decimal
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// BuildPendingPayment creates a new PENDING Payment for an opened checkout session.
func BuildPendingPayment(
	id uuid.UUID,
	borrowingID uuid.UUID,
	paymentType PaymentType,
	session CheckoutSession,
	amount decimal.Decimal,
	createdAt time.Time,
) Payment {

	return Payment{
		ID:          id,
		BorrowingID: borrowingID,
		Type:        paymentType,
		Status:      PaymentStatusPending,
		SessionID:   session.ID,
		SessionURL:  session.URL,
		Amount:      amount,
		CreatedAt:   ToOccurredAt(createdAt),
	}
}

// IsCompleted reports whether the payment was confirmed.
func (p Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// Handle returns what a caller needs to send the user to the checkout page.
func (p Payment) Handle() PaymentHandle {
	return PaymentHandle{
		PaymentID:  p.ID,
		Type:       p.Type,
		Amount:     p.Amount,
		SessionID:  p.SessionID,
		SessionURL: p.SessionURL,
	}
}

// PaymentHandle identifies a pending payment and where the user can pay it.
type PaymentHandle struct {
	PaymentID  uuid.UUID
	Type       PaymentType
	Amount     decimal.Decimal
	SessionID  string
	SessionURL string
}

// CheckoutRequest asks the checkout provider for a hosted payment page.
type CheckoutRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Description string
}

// CheckoutSession is the provider's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID  string
	URL string
}
