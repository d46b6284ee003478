package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOutOfStock is returned when a book has no copy left to reserve.
	ErrOutOfStock = errors.New("book is out of stock")

	// ErrInvalidDateRange is returned when a return date lies before the borrow date.
	ErrInvalidDateRange = errors.New("expected return date must not be before the borrow date")

	// ErrDuplicateActiveBorrowing is returned when the user already has this book borrowed.
	ErrDuplicateActiveBorrowing = errors.New("user already has an active borrowing of this book")

	// ErrBookUnavailable is returned when a borrowing cannot be created because no copy is available.
	ErrBookUnavailable = errors.New("book is currently unavailable")

	// ErrAlreadyReturned is returned when returning a borrowing that is already closed.
	ErrAlreadyReturned = errors.New("borrowing has already been returned")

	// ErrSessionCreationFailed is returned when the checkout provider could not open a session.
	ErrSessionCreationFailed = errors.New("checkout session creation failed")

	// ErrPaymentNotFound is returned when no payment matches a session or id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrBookNotFound is returned when no book matches an id.
	ErrBookNotFound = errors.New("book not found")

	// ErrBorrowingNotFound is returned when no borrowing matches an id, or it belongs to someone else.
	ErrBorrowingNotFound = errors.New("borrowing not found")

	// ErrInvalidAmount is returned when a fee or payment amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidInventory is returned when a book would get a negative copy count.
	ErrInvalidInventory = errors.New("inventory must not be negative")
)

// BookUnavailableError is returned by a borrowing request for a book without free copies.
// EarliestReturn is an advisory hint: the earliest expected return date among the open
// borrowings of the book, or nil when none is known.
type BookUnavailableError struct {
	BookID         uuid.UUID
	EarliestReturn *Date
}

// Error implements error.
func (e *BookUnavailableError) Error() string {
	if e.EarliestReturn == nil {
		return ErrBookUnavailable.Error()
	}

	return fmt.Sprintf("%s, earliest expected return on %s", ErrBookUnavailable, e.EarliestReturn)
}

// Is makes errors.Is match both ErrBookUnavailable and ErrOutOfStock.
func (e *BookUnavailableError) Is(target error) bool {
	return target == ErrBookUnavailable || target == ErrOutOfStock
}

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrBorrowingNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
