package core

import (
	"time"
)

// FinePaymentRequestedEventType is the event type identifier.
const FinePaymentRequestedEventType = "FinePaymentRequested"

// FinePaymentRequested represents when a late return was held back until a fine is paid.
type FinePaymentRequested struct {
	BorrowingID BorrowingIDString
	PaymentID   string
	UserID      UserIDString
	Amount      string
	ExpiredDays int
	SessionURL  string
	OccurredAt  OccurredAtTS
}

// BuildFinePaymentRequested creates a new FinePaymentRequested event.
func BuildFinePaymentRequested(
	borrowing Borrowing,
	handle PaymentHandle,
	today Date,
	occurredAt time.Time,
) FinePaymentRequested {

	return FinePaymentRequested{
		BorrowingID: borrowing.ID.String(),
		PaymentID:   handle.PaymentID.String(),
		UserID:      borrowing.UserID.String(),
		Amount:      handle.Amount.StringFixed(2),
		ExpiredDays: borrowing.ExpiredDays(today),
		SessionURL:  handle.SessionURL,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e FinePaymentRequested) EventType() string {
	return FinePaymentRequestedEventType
}

// HasOccurredAt returns when this event occurred.
func (e FinePaymentRequested) HasOccurredAt() time.Time {
	return e.OccurredAt
}
