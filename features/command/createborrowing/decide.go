package createborrowing

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Decide implements the business rules for borrowing a book.
// It is a pure function: the handler reads the state and applies the decision.
//
//	GIVEN: a book and whether the user already has it borrowed
//	WHEN: CreateBorrowing is received
//	THEN: BorrowingCreated
//	ERROR: core.ErrInvalidDateRange if the expected return date lies before today
//	ERROR: core.ErrDuplicateActiveBorrowing if the user already has this book borrowed
//	ERROR: core.ErrOutOfStock if no copy is left
//
// The inventory check here is an early exit only. The conditional reservation in the store
// is what keeps two borrowers from getting the last copy.
func Decide(book core.Book, hasActiveBorrowing bool, command Command) core.DecisionResult {
	if err := CheckDates(command); err != nil {
		return core.ErrorDecision(err)
	}

	if hasActiveBorrowing {
		return core.ErrorDecision(core.ErrDuplicateActiveBorrowing)
	}

	if book.Inventory <= 0 {
		return core.ErrorDecision(core.ErrOutOfStock)
	}

	return core.SuccessDecision(core.BuildBorrowingCreated(command.Borrowing(), book, command.OccurredAt))
}

// CheckDates rejects an expected return date before today. It needs no state,
// so the handler runs it before anything is read.
func CheckDates(command Command) error {
	if command.ExpectedReturnDate.Before(command.Today) {
		return core.ErrInvalidDateRange
	}

	return nil
}
