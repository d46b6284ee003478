// Package completepayment implements the confirmation half of the payment reconciliation.
//
// The checkout provider's webhook names a session. The PENDING payment of that session is flipped to
// COMPLETED by a conditional update, so concurrent deliveries of the same webhook complete it once and
// every later delivery is an idempotent no-op. Completing a FINE also closes the late borrowing and
// puts its copy back into inventory, in the same transaction.
package completepayment
