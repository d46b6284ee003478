package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cover is the binding of a book.
type Cover string

const (
	// CoverHard is a hardcover book.
	CoverHard Cover = "HARD"

	// CoverSoft is a softcover book.
	CoverSoft Cover = "SOFT"
)

// IsValid reports whether c is a known cover kind.
func (c Cover) IsValid() bool {
	return c == CoverHard || c == CoverSoft
}

// Book is a catalog entry together with its number of copies available for borrowing.
// Inventory is only ever changed through the store's atomic reserve and release operations.
type Book struct {
	ID        uuid.UUID
	Title     string
	Author    string
	Cover     Cover
	Inventory int
	DailyFee  decimal.Decimal
}

// BuildBook creates a new Book.
func BuildBook(
	id uuid.UUID,
	title string,
	author string,
	cover Cover,
	inventory int,
	dailyFee decimal.Decimal,
) Book {

	return Book{
		ID:        id,
		Title:     title,
		Author:    author,
		Cover:     cover,
		Inventory: inventory,
		DailyFee:  dailyFee,
	}
}
