package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store defines the store operations needed by the query handlers.
type Store interface {
	BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error)
	PaymentByID(ctx context.Context, paymentID uuid.UUID) (core.Payment, error)
	Payments(ctx context.Context, filter store.PaymentFilter) ([]core.Payment, error)
}

// ListQueryHandler lists the payments the viewer may see.
type ListQueryHandler struct {
	store Store
}

// NewListQueryHandler creates a new ListQueryHandler.
func NewListQueryHandler(s Store) ListQueryHandler {
	return ListQueryHandler{store: s}
}

// Handle lists payments, restricted to the viewer's own borrowings unless the viewer is staff.
func (h ListQueryHandler) Handle(ctx context.Context, query ListQuery) (Payments, error) {
	filter := store.PaymentFilter{BorrowingID: query.BorrowingID}

	if !query.Viewer.IsStaff {
		userID := query.Viewer.UserID
		filter.UserID = &userID
	}

	items, err := h.store.Payments(store.WithEventualConsistency(ctx), filter)
	if err != nil {
		return Payments{}, err
	}

	return Payments{Items: items, Count: len(items)}, nil
}

// DetailQueryHandler reads one payment the viewer may see.
type DetailQueryHandler struct {
	store Store
}

// NewDetailQueryHandler creates a new DetailQueryHandler.
func NewDetailQueryHandler(s Store) DetailQueryHandler {
	return DetailQueryHandler{store: s}
}

// Handle reads the payment. A payment of someone else's borrowing fails with core.ErrPaymentNotFound.
func (h DetailQueryHandler) Handle(ctx context.Context, query DetailQuery) (core.Payment, error) {
	readCtx := store.WithEventualConsistency(ctx)

	payment, err := h.store.PaymentByID(readCtx, query.PaymentID)
	if err != nil {
		return core.Payment{}, err
	}

	if query.Viewer.IsStaff {
		return payment, nil
	}

	borrowing, err := h.store.BorrowingByID(readCtx, payment.BorrowingID)
	if errors.Is(err, core.ErrBorrowingNotFound) {
		return core.Payment{}, core.ErrPaymentNotFound
	}
	if err != nil {
		return core.Payment{}, err
	}

	if !query.Viewer.CanSee(borrowing.UserID) {
		return core.Payment{}, core.ErrPaymentNotFound
	}

	return payment, nil
}
