package initiatepayment

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	commandType = "InitiateRentalPayment"
)

// Command represents the intent to pay the rental fee of a borrowing.
type Command struct {
	BorrowingID uuid.UUID
	UserID      uuid.UUID
	IsStaff     bool
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(borrowingID uuid.UUID, userID uuid.UUID, isStaff bool) Command {
	return Command{
		BorrowingID: borrowingID,
		UserID:      userID,
		IsStaff:     isStaff,
	}
}

// Result carries the checkout session the user has to complete.
type Result struct {
	shell.HandlerResult
	Payment core.PaymentHandle
}
