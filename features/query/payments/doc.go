// Package payments serves the payment read models. Staff sees every payment, users see the payments
// of their own borrowings.
package payments
