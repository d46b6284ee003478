package initiatepayment

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Decide determines what the user owes for the borrowing.
//
//	GIVEN: a borrowing and its book
//	WHEN: the rental fee payment is requested
//	THEN: payment of the rental fee is required
//	ERROR: core.ErrBorrowingNotFound if a non-staff user asks for somebody else's borrowing
func Decide(borrowing core.Borrowing, book core.Book, command Command) core.DecisionResult {
	if !command.IsStaff && borrowing.UserID != command.UserID {
		return core.ErrorDecision(core.ErrBorrowingNotFound)
	}

	return core.PaymentRequiredDecision(
		core.RentalFee(book.DailyFee, borrowing.BorrowDate, borrowing.ExpectedReturnDate),
	)
}
