package core

import (
	"time"
)

// BorrowingOverdueEventType is the event type identifier.
const BorrowingOverdueEventType = "BorrowingOverdue"

// BorrowingOverdue represents an open borrowing found on or past its expected return date by the overdue scan.
type BorrowingOverdue struct {
	BorrowingID        BorrowingIDString
	BookID             BookIDString
	UserID             UserIDString
	ChannelID          string
	ExpectedReturnDate string
	ExpiredDays        int
	OccurredAt         OccurredAtTS
}

// BuildBorrowingOverdue creates a new BorrowingOverdue event.
func BuildBorrowingOverdue(borrowing Borrowing, channelID string, today Date, occurredAt time.Time) BorrowingOverdue {
	return BorrowingOverdue{
		BorrowingID:        borrowing.ID.String(),
		BookID:             borrowing.BookID.String(),
		UserID:             borrowing.UserID.String(),
		ChannelID:          channelID,
		ExpectedReturnDate: borrowing.ExpectedReturnDate.String(),
		ExpiredDays:        borrowing.ExpiredDays(today),
		OccurredAt:         ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e BorrowingOverdue) EventType() string {
	return BorrowingOverdueEventType
}

// HasOccurredAt returns when this event occurred.
func (e BorrowingOverdue) HasOccurredAt() time.Time {
	return e.OccurredAt
}
