package core

import (
	"github.com/shopspring/decimal"
)

// DecisionResult represents the outcome of a business decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory methods:
// IdempotentDecision(), SuccessDecision(event), PaymentRequiredDecision(amount) or ErrorDecision(err).
// Do not construct DecisionResult directly.
type DecisionResult struct {
	Outcome string      // "idempotent", "success", "payment_required" or "error"
	Event   DomainEvent // only set for success decisions
	Charge  decimal.Decimal
	Err     error
}

const (
	idempotentOutcome      = "idempotent"
	successOutcome         = "success"
	paymentRequiredOutcome = "payment_required"
	errorOutcome           = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{
		Outcome: idempotentOutcome,
	}
}

// SuccessDecision creates a DecisionResult indicating a state change, described by event.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Event:   event,
	}
}

// PaymentRequiredDecision creates a DecisionResult indicating the state change has to wait for a payment of charge.
func PaymentRequiredDecision(charge decimal.Decimal) DecisionResult {
	return DecisionResult{
		Outcome: paymentRequiredOutcome,
		Charge:  charge,
	}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: errorOutcome,
		Err:     err,
	}
}

// IsIdempotent returns true if no state change is needed.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// IsPaymentRequired returns true if the state change has to wait for a payment.
func (r DecisionResult) IsPaymentRequired() bool {
	return r.Outcome == paymentRequiredOutcome
}

// HasError returns the error if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == errorOutcome {
		return r.Err
	}

	return nil
}
