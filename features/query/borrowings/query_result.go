package borrowings

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Borrowings represents a borrowing listing.
type Borrowings struct {
	Items []core.Borrowing
	Count int
}

// OverdueBorrowing is an open borrowing past its expected return date, with the days it is late.
type OverdueBorrowing struct {
	core.Borrowing
	ExpiredDays int
}

// OverdueBorrowings represents the viewer's overdue borrowings.
type OverdueBorrowings struct {
	Items []OverdueBorrowing
	Count int
}
