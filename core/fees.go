package core

import (
	"github.com/shopspring/decimal"
)

// moneyPlaces matches the numeric(10,2) money columns.
const moneyPlaces = 2

// RoundMoney rounds amount to cents, half away from zero like Postgres numeric does.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(moneyPlaces)
}

// FineMultiplier is applied to the daily fee for every day a book is returned late.
const FineMultiplier = 2

// RentalFee is the amount charged up front for a borrowing: what it will have cost
// by expectedReturnDate.
func RentalFee(dailyFee decimal.Decimal, borrowDate Date, expectedReturnDate Date) decimal.Decimal {
	return AccruedCost(dailyFee, borrowDate, expectedReturnDate)
}

// AccruedCost is what a borrowing has cost by today: one daily fee per day since borrowDate,
// and at least one day.
func AccruedCost(dailyFee decimal.Decimal, borrowDate Date, today Date) decimal.Decimal {
	days := max(today.DaysSince(borrowDate), 1)

	return dailyFee.Mul(decimal.NewFromInt(int64(days)))
}

// FineAmount is the late-return charge: days past the expected date times the daily fee times FineMultiplier.
func FineAmount(dailyFee decimal.Decimal, expectedReturnDate Date, returnDate Date) decimal.Decimal {
	days := returnDate.DaysSince(expectedReturnDate)
	if days < 0 {
		days = 0
	}

	return dailyFee.Mul(decimal.NewFromInt(int64(days))).Mul(decimal.NewFromInt(FineMultiplier))
}
