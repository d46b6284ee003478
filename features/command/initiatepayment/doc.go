// Package initiatepayment opens checkout sessions and records them as PENDING payments.
//
// Engine.Initiate is the entry point the borrowing handlers use for rental fees and late-return fines.
// The checkout session is opened before anything is persisted, so a provider failure leaves no trace.
// A borrowing holds at most one payment per type: asking again for a payment that is still PENDING
// hands back the existing checkout session instead of opening a second one.
//
// CommandHandler serves the explicit "pay the rental fee of my borrowing" request, used when the
// fee could not be initiated together with the borrowing.
package initiatepayment
