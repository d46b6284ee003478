// Package createborrowing implements the Borrow a Book use case.
//
// A user borrows one copy of a book until an expected return date. The copy is reserved and the
// borrowing recorded in one transaction, so an out-of-stock book never gets a borrowing and a failed
// insert never loses a copy. After commit the BorrowingCreated notice is published and, when the
// handler is configured with a payment initiator, the rental fee checkout is opened.
package createborrowing
