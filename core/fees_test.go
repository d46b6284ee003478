package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

func Test_FineAmount_IsDaysLateTimesDailyFeeTimesTwo(t *testing.T) {
	// arrange
	dailyFee := decimal.RequireFromString("1.25")
	expected := core.MustParseDate("2025-05-10")
	returned := core.MustParseDate("2025-05-13")

	// act
	fine := core.FineAmount(dailyFee, expected, returned)

	// assert
	assert.True(t, decimal.RequireFromString("7.50").Equal(fine), "got %s", fine)
}

func Test_FineAmount_IsZeroWhenOnTime(t *testing.T) {
	fine := core.FineAmount(decimal.NewFromInt(3), core.MustParseDate("2025-05-10"), core.MustParseDate("2025-05-09"))

	assert.True(t, fine.IsZero())
}

func Test_RentalFee_ChargesAtLeastOneDay(t *testing.T) {
	today := core.MustParseDate("2025-05-10")

	sameDay := core.RentalFee(decimal.RequireFromString("2.00"), today, today)
	week := core.RentalFee(decimal.RequireFromString("2.00"), today, today.AddDays(7))

	assert.Equal(t, "2.00", sameDay.StringFixed(2))
	assert.Equal(t, "14.00", week.StringFixed(2))
}

func Test_RentalFee_IsTheCostAccruedByTheExpectedReturnDate(t *testing.T) {
	dailyFee := decimal.RequireFromString("1.75")
	borrowed := core.MustParseDate("2025-05-10")

	for _, days := range []int{0, 1, 9} {
		expected := borrowed.AddDays(days)

		assert.True(t, core.AccruedCost(dailyFee, borrowed, expected).Equal(core.RentalFee(dailyFee, borrowed, expected)), "days: %d", days)
	}
}

func Test_Borrowing_ExpiredDaysAndOverdue(t *testing.T) {
	// arrange
	b := core.Borrowing{
		BorrowDate:         core.MustParseDate("2025-05-01"),
		ExpectedReturnDate: core.MustParseDate("2025-05-10"),
	}

	// act & assert
	assert.False(t, b.IsOverdueOn(core.MustParseDate("2025-05-09")))
	assert.True(t, b.IsOverdueOn(core.MustParseDate("2025-05-10")), "due today counts as overdue for the scan")
	assert.False(t, b.IsLateOn(core.MustParseDate("2025-05-10")), "returning on the due date is not late")
	assert.Equal(t, 0, b.ExpiredDays(core.MustParseDate("2025-05-10")))
	assert.Equal(t, 4, b.ExpiredDays(core.MustParseDate("2025-05-14")))

	closed := b.ClosedOn(core.MustParseDate("2025-05-12"))
	assert.False(t, closed.IsActive())
	assert.False(t, closed.IsOverdueOn(core.MustParseDate("2025-05-14")))
	assert.True(t, b.IsActive(), "ClosedOn must not mutate the receiver")
}

func Test_BookUnavailableError_MatchesBothSentinels(t *testing.T) {
	hint := core.MustParseDate("2025-06-01")
	err := error(&core.BookUnavailableError{EarliestReturn: &hint})

	assert.ErrorIs(t, err, core.ErrBookUnavailable)
	assert.ErrorIs(t, err, core.ErrOutOfStock)
	assert.Contains(t, err.Error(), "2025-06-01")
}
