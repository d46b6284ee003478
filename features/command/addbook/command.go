package addbook

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	commandType = "AddBook"
)

var (
	// ErrEmptyTitle is returned when a book has no title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrEmptyAuthor is returned when a book has no author.
	ErrEmptyAuthor = errors.New("author must not be empty")

	// ErrInvalidCover is returned for a cover kind other than HARD or SOFT.
	ErrInvalidCover = errors.New("cover must be HARD or SOFT")
)

// Command represents the intent to add a book to the catalog.
type Command struct {
	BookID    uuid.UUID
	Title     string
	Author    string
	Cover     core.Cover
	Inventory int
	DailyFee  decimal.Decimal
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with a fresh book id.
func BuildCommand(title string, author string, cover core.Cover, inventory int, dailyFee decimal.Decimal) Command {
	return Command{
		BookID:    uuid.New(),
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Cover:     cover,
		Inventory: inventory,
		DailyFee:  dailyFee,
	}
}

// Validate checks the catalog rules a new book has to satisfy.
func (c Command) Validate() error {
	switch {
	case c.Title == "":
		return ErrEmptyTitle
	case c.Author == "":
		return ErrEmptyAuthor
	case !c.Cover.IsValid():
		return ErrInvalidCover
	case c.Inventory < 0:
		return core.ErrInvalidInventory
	case !core.RoundMoney(c.DailyFee).IsPositive():
		return core.ErrInvalidAmount
	}

	return nil
}

// Book returns the catalog entry the command creates, with the daily fee in cents.
func (c Command) Book() core.Book {
	return core.BuildBook(c.BookID, c.Title, c.Author, c.Cover, c.Inventory, core.RoundMoney(c.DailyFee))
}

// Result contains the added book.
type Result struct {
	shell.HandlerResult
	Book core.Book
}
