package returnborrowing

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// state is what the store knows about the borrowing being returned.
type state struct {
	borrowing core.Borrowing
	book      core.Book
	fine      *core.Payment
}

// Decide implements the business rules for returning a book.
//
//	GIVEN: an open borrowing, its book and its FINE payment if there is one
//	WHEN: ReturnBorrowing is received
//	THEN: BorrowingReturned
//	PAYMENT REQUIRED: returned after the expected date and no COMPLETED fine,
//	                  charge = days late * daily fee * core.FineMultiplier
//	ERROR: core.ErrBorrowingNotFound if a non-staff user returns somebody else's borrowing
//	ERROR: core.ErrAlreadyReturned if the borrowing is closed
func Decide(borrowing core.Borrowing, book core.Book, fine *core.Payment, command Command) core.DecisionResult {
	s := state{borrowing: borrowing, book: book, fine: fine}

	if !command.IsStaff && s.borrowing.UserID != command.UserID {
		return core.ErrorDecision(core.ErrBorrowingNotFound)
	}

	if !s.borrowing.IsActive() {
		return core.ErrorDecision(core.ErrAlreadyReturned)
	}

	if s.borrowing.IsLateOn(command.Today) && !s.finePaid() {
		return core.PaymentRequiredDecision(
			core.FineAmount(s.book.DailyFee, s.borrowing.ExpectedReturnDate, command.Today),
		)
	}

	return core.SuccessDecision(core.BuildBorrowingReturned(s.borrowing, command.Today, command.OccurredAt))
}

func (s state) finePaid() bool {
	return s.fine != nil && s.fine.IsCompleted()
}
