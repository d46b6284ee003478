package core

import (
	"time"
)

// BookIDString represents a book identifier
type BookIDString = string

// UserIDString represents a user identifier
type UserIDString = string

// BorrowingIDString represents a borrowing identifier
type BorrowingIDString = string

// OccurredAtTS represents when an event occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
