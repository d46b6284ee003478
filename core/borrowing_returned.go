package core

import (
	"time"
)

// BorrowingReturnedEventType is the event type identifier.
const BorrowingReturnedEventType = "BorrowingReturned"

// BorrowingReturned represents when a borrowing was closed and its copy went back into inventory.
type BorrowingReturned struct {
	BorrowingID BorrowingIDString
	BookID      BookIDString
	UserID      UserIDString
	ReturnDate  string
	OccurredAt  OccurredAtTS
}

// BuildBorrowingReturned creates a new BorrowingReturned event.
func BuildBorrowingReturned(borrowing Borrowing, returnDate Date, occurredAt time.Time) BorrowingReturned {
	return BorrowingReturned{
		BorrowingID: borrowing.ID.String(),
		BookID:      borrowing.BookID.String(),
		UserID:      borrowing.UserID.String(),
		ReturnDate:  returnDate.String(),
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BorrowingReturned) EventType() string {
	return BorrowingReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BorrowingReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}
