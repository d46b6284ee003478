package payments

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Payments represents a payment listing.
type Payments struct {
	Items []core.Payment
	Count int
}
