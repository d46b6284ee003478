package completepayment

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Decide implements the business rules for completing a payment.
//
//	GIVEN: the payment of the confirmed session
//	WHEN: CompletePayment is received
//	THEN: PaymentCompleted
//	IDEMPOTENCY: an already COMPLETED payment generates nothing
func Decide(payment core.Payment, command Command) core.DecisionResult {
	if payment.IsCompleted() {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(core.BuildPaymentCompleted(payment, command.OccurredAt))
}

// closesBorrowing reports whether completing payment also ends its borrowing.
func closesBorrowing(payment core.Payment, borrowing core.Borrowing) bool {
	return payment.Type == core.PaymentTypeFine && borrowing.IsActive()
}
