package returnborrowing

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	commandType = "ReturnBorrowing"
)

// Command represents the intent to return a borrowed book.
// Staff may return any borrowing, everybody else only their own.
type Command struct {
	BorrowingID uuid.UUID
	UserID      uuid.UUID
	IsStaff     bool
	Today       core.Date
	OccurredAt  core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for a return on the calendar day of now.
func BuildCommand(borrowingID uuid.UUID, userID uuid.UUID, isStaff bool, now time.Time) Command {
	return Command{
		BorrowingID: borrowingID,
		UserID:      userID,
		IsStaff:     isStaff,
		Today:       core.DateOf(now),
		OccurredAt:  core.ToOccurredAt(now),
	}
}

// Result tells whether the borrowing was closed or is waiting for its fine to be paid.
// Borrowing is the closed borrowing, or the still open one while the fine is outstanding.
type Result struct {
	shell.HandlerResult
	Borrowing       core.Borrowing
	PaymentRequired bool
	Payment         *core.PaymentHandle
}

// IsPaymentRequired reports whether the return is waiting for a fine.
func (r Result) IsPaymentRequired() bool {
	return r.PaymentRequired
}
