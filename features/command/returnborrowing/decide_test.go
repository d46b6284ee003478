package returnborrowing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/returnborrowing"
)

var (
	expectedDay = core.MustParseDate("2025-03-08")
	onTime      = time.Date(2025, 3, 8, 18, 0, 0, 0, time.UTC)
	threeLate   = time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
)

func givenBookAndBorrowing() (core.Book, core.Borrowing) {
	book := core.BuildBook(uuid.New(), "Neuromancer", "William Gibson", core.CoverSoft, 0, decimal.RequireFromString("1.50"))
	borrowing := core.BuildBorrowing(uuid.New(), book.ID, uuid.New(), core.MustParseDate("2025-03-01"), expectedDay)

	return book, borrowing
}

func Test_Decide_OnTime(t *testing.T) {
	// arrange
	book, borrowing := givenBookAndBorrowing()
	command := returnborrowing.BuildCommand(borrowing.ID, borrowing.UserID, false, onTime)

	// act
	result := returnborrowing.Decide(borrowing, book, nil, command)

	// assert
	require.NoError(t, result.HasError())
	returned, ok := result.Event.(core.BorrowingReturned)
	require.True(t, ok)
	assert.Equal(t, "2025-03-08", returned.ReturnDate)
}

func Test_Decide_Late_RequiresFine(t *testing.T) {
	// arrange
	book, borrowing := givenBookAndBorrowing()
	command := returnborrowing.BuildCommand(borrowing.ID, borrowing.UserID, false, threeLate)

	// act
	result := returnborrowing.Decide(borrowing, book, nil, command)

	// assert
	assert.True(t, result.IsPaymentRequired())
	assert.True(t, decimal.RequireFromString("9.00").Equal(result.Charge), "3 days * 1.50 * 2")
}

func Test_Decide_Late_PendingFineStillRequiresPayment(t *testing.T) {
	// arrange
	book, borrowing := givenBookAndBorrowing()
	fine := core.Payment{Type: core.PaymentTypeFine, Status: core.PaymentStatusPending}

	// act
	result := returnborrowing.Decide(borrowing, book, &fine, returnborrowing.BuildCommand(borrowing.ID, borrowing.UserID, false, threeLate))

	// assert
	assert.True(t, result.IsPaymentRequired())
}

func Test_Decide_Late_CompletedFineAllowsReturn(t *testing.T) {
	// arrange
	book, borrowing := givenBookAndBorrowing()
	fine := core.Payment{Type: core.PaymentTypeFine, Status: core.PaymentStatusCompleted}

	// act
	result := returnborrowing.Decide(borrowing, book, &fine, returnborrowing.BuildCommand(borrowing.ID, borrowing.UserID, false, threeLate))

	// assert
	require.NoError(t, result.HasError())
	assert.False(t, result.IsPaymentRequired())
	assert.IsType(t, core.BorrowingReturned{}, result.Event)
}

func Test_Decide_Errors(t *testing.T) {
	book, borrowing := givenBookAndBorrowing()
	closed := borrowing.ClosedOn(expectedDay)

	// a stranger is told the borrowing does not exist, even when it is closed
	assert.ErrorIs(t,
		returnborrowing.Decide(closed, book, nil, returnborrowing.BuildCommand(borrowing.ID, uuid.New(), false, onTime)).HasError(),
		core.ErrBorrowingNotFound)

	assert.ErrorIs(t,
		returnborrowing.Decide(closed, book, nil, returnborrowing.BuildCommand(borrowing.ID, borrowing.UserID, false, onTime)).HasError(),
		core.ErrAlreadyReturned)

	assert.ErrorIs(t,
		returnborrowing.Decide(closed, book, nil, returnborrowing.BuildCommand(borrowing.ID, uuid.New(), true, onTime)).HasError(),
		core.ErrAlreadyReturned)
}
