package core

import (
	"github.com/google/uuid"
)

// Borrowing records one user holding one copy of one book.
// It is open while ActualReturnDate is nil and closed, for good, once it is set.
type Borrowing struct {
	ID                 uuid.UUID
	BookID             uuid.UUID
	UserID             uuid.UUID
	BorrowDate         Date
	ExpectedReturnDate Date
	ActualReturnDate   *Date
}

// BuildBorrowing creates a new open Borrowing that starts on borrowDate.
func BuildBorrowing(id uuid.UUID, bookID uuid.UUID, userID uuid.UUID, borrowDate Date, expectedReturnDate Date) Borrowing {
	return Borrowing{
		ID:                 id,
		BookID:             bookID,
		UserID:             userID,
		BorrowDate:         borrowDate,
		ExpectedReturnDate: expectedReturnDate,
	}
}

// IsActive reports whether the borrowing has not been returned yet.
func (b Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}

// IsOverdueOn reports whether the borrowing is still open on or after its expected return date.
func (b Borrowing) IsOverdueOn(today Date) bool {
	return b.IsActive() && !b.ExpectedReturnDate.After(today)
}

// IsLateOn reports whether returning on today would be later than expected.
func (b Borrowing) IsLateOn(today Date) bool {
	return today.After(b.ExpectedReturnDate)
}

// ExpiredDays returns how many days today is past the expected return date, never negative.
func (b Borrowing) ExpiredDays(today Date) int {
	days := today.DaysSince(b.ExpectedReturnDate)
	if days < 0 {
		return 0
	}

	return days
}

// ClosedOn returns a copy of the borrowing closed on returnDate.
func (b Borrowing) ClosedOn(returnDate Date) Borrowing {
	closed := b
	closed.ActualReturnDate = &returnDate

	return closed
}
