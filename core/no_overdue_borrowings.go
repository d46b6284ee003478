package core

import (
	"time"
)

// NoOverdueBorrowingsEventType is the event type identifier.
const NoOverdueBorrowingsEventType = "NoOverdueBorrowings"

// NoOverdueBorrowings represents a user with a linked channel and nothing overdue at scan time.
type NoOverdueBorrowings struct {
	UserID     UserIDString
	ChannelID  string
	ScanDate   string
	OccurredAt OccurredAtTS
}

// BuildNoOverdueBorrowings creates a new NoOverdueBorrowings event.
func BuildNoOverdueBorrowings(userID string, channelID string, today Date, occurredAt time.Time) NoOverdueBorrowings {
	return NoOverdueBorrowings{
		UserID:     userID,
		ChannelID:  channelID,
		ScanDate:   today.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e NoOverdueBorrowings) EventType() string {
	return NoOverdueBorrowingsEventType
}

// HasOccurredAt returns when this event occurred.
func (e NoOverdueBorrowings) HasOccurredAt() time.Time {
	return e.OccurredAt
}
