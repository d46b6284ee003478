// Package returnborrowing implements the Return a Book use case.
//
// An on-time return closes the borrowing and puts the copy back into inventory in one transaction.
// A late return is held back until the fine is paid: nothing is closed, a FINE checkout is opened
// (or the pending one handed out again) and the result tells the caller where to pay. Completing
// that checkout closes the borrowing, see package completepayment.
package returnborrowing
