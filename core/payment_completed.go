package core

import (
	"time"
)

// PaymentCompletedEventType is the event type identifier.
const PaymentCompletedEventType = "PaymentCompleted"

// PaymentCompleted represents when the checkout provider confirmed a payment.
type PaymentCompleted struct {
	PaymentID   string
	BorrowingID BorrowingIDString
	PaymentType string
	SessionID   string
	Amount      string
	OccurredAt  OccurredAtTS
}

// BuildPaymentCompleted creates a new PaymentCompleted event.
func BuildPaymentCompleted(payment Payment, occurredAt time.Time) PaymentCompleted {
	return PaymentCompleted{
		PaymentID:   payment.ID.String(),
		BorrowingID: payment.BorrowingID.String(),
		PaymentType: string(payment.Type),
		SessionID:   payment.SessionID,
		Amount:      payment.Amount.StringFixed(2),
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e PaymentCompleted) EventType() string {
	return PaymentCompletedEventType
}

// HasOccurredAt returns when this event occurred.
func (e PaymentCompleted) HasOccurredAt() time.Time {
	return e.OccurredAt
}
