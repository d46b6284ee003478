package core

import (
	"time"
)

// BorrowingCreatedEventType is the event type identifier.
const BorrowingCreatedEventType = "BorrowingCreated"

// BorrowingCreated represents when a user borrowed a copy of a book.
// ChannelID is empty when the user has not linked a notification channel.
type BorrowingCreated struct {
	BorrowingID        BorrowingIDString
	BookID             BookIDString
	UserID             UserIDString
	ChannelID          string
	BookTitle          string
	BorrowDate         string
	ExpectedReturnDate string
	DailyFee           string
	AccruedCost        string
	OccurredAt         OccurredAtTS
}

// BuildBorrowingCreated creates a new BorrowingCreated event.
func BuildBorrowingCreated(borrowing Borrowing, book Book, occurredAt time.Time) BorrowingCreated {
	return BorrowingCreated{
		BorrowingID:        borrowing.ID.String(),
		BookID:             borrowing.BookID.String(),
		UserID:             borrowing.UserID.String(),
		BookTitle:          book.Title,
		BorrowDate:         borrowing.BorrowDate.String(),
		ExpectedReturnDate: borrowing.ExpectedReturnDate.String(),
		DailyFee:           book.DailyFee.StringFixed(2),
		AccruedCost:        AccruedCost(book.DailyFee, borrowing.BorrowDate, borrowing.ExpectedReturnDate).StringFixed(2),
		OccurredAt:         ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BorrowingCreated) EventType() string {
	return BorrowingCreatedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BorrowingCreated) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ToChannel returns a copy of the event addressed to channelID.
func (e BorrowingCreated) ToChannel(channelID string) BorrowingCreated {
	e.ChannelID = channelID
	return e
}
