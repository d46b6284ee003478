package createborrowing

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	commandType = "CreateBorrowing"
)

// Command represents the intent of a user to borrow a copy of a book.
type Command struct {
	BorrowingID        uuid.UUID
	UserID             uuid.UUID
	BookID             uuid.UUID
	ExpectedReturnDate core.Date
	Today              core.Date
	OccurredAt         core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for a borrowing starting on the calendar day of now.
func BuildCommand(userID uuid.UUID, bookID uuid.UUID, expectedReturnDate core.Date, now time.Time) Command {
	return Command{
		BorrowingID:        uuid.New(),
		UserID:             userID,
		BookID:             bookID,
		ExpectedReturnDate: expectedReturnDate,
		Today:              core.DateOf(now),
		OccurredAt:         core.ToOccurredAt(now),
	}
}

// Borrowing returns the borrowing the command asks for.
func (c Command) Borrowing() core.Borrowing {
	return core.BuildBorrowing(c.BorrowingID, c.BookID, c.UserID, c.Today, c.ExpectedReturnDate)
}

// Result is the created borrowing together with the rental fee checkout, when one was opened.
// PaymentErr is set when the checkout could not be opened; the borrowing stands regardless.
type Result struct {
	shell.HandlerResult
	Borrowing  core.Borrowing
	Payment    *core.PaymentHandle
	PaymentErr error
}
