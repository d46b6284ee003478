package checkout

import (
	"errors"
)

const (
	// EventSessionCompleted is sent when the user finished a checkout session.
	EventSessionCompleted = "checkout.session.completed"

	// EventAsyncPaymentSucceeded is sent when a delayed payment method of a session succeeded.
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

var (
	// ErrInvalidSignature is returned when a webhook payload does not carry a valid signature.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedEvent is returned when a correctly signed webhook payload cannot be decoded.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// Event is a verified webhook notification from a checkout provider.
type Event struct {
	ID        string
	Type      string
	SessionID string
}

// CompletesPayment reports whether the event confirms that the session was paid.
func (e Event) CompletesPayment() bool {
	return e.Type == EventSessionCompleted || e.Type == EventAsyncPaymentSucceeded
}
