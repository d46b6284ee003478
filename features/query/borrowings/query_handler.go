package borrowings

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store defines the store operations needed by the query handlers.
type Store interface {
	BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error)
	Borrowings(ctx context.Context, filter store.BorrowingFilter) ([]core.Borrowing, error)
}

// ListQueryHandler lists the borrowings the viewer may see.
type ListQueryHandler struct {
	store Store
}

// NewListQueryHandler creates a new ListQueryHandler.
func NewListQueryHandler(s Store) ListQueryHandler {
	return ListQueryHandler{store: s}
}

// Handle lists borrowings, restricted to the viewer's own unless the viewer is staff.
func (h ListQueryHandler) Handle(ctx context.Context, query ListQuery) (Borrowings, error) {
	filter := store.BorrowingFilter{IsActive: query.IsActive}

	switch {
	case !query.Viewer.IsStaff:
		userID := query.Viewer.UserID
		filter.UserID = &userID
	case query.UserID != nil:
		filter.UserID = query.UserID
	}

	items, err := h.store.Borrowings(store.WithEventualConsistency(ctx), filter)
	if err != nil {
		return Borrowings{}, err
	}

	return Borrowings{Items: items, Count: len(items)}, nil
}

// DetailQueryHandler reads one borrowing the viewer may see.
type DetailQueryHandler struct {
	store Store
}

// NewDetailQueryHandler creates a new DetailQueryHandler.
func NewDetailQueryHandler(s Store) DetailQueryHandler {
	return DetailQueryHandler{store: s}
}

// Handle reads the borrowing. Someone else's borrowing fails with core.ErrBorrowingNotFound.
func (h DetailQueryHandler) Handle(ctx context.Context, query DetailQuery) (core.Borrowing, error) {
	borrowing, err := h.store.BorrowingByID(store.WithEventualConsistency(ctx), query.BorrowingID)
	if err != nil {
		return core.Borrowing{}, err
	}

	if !query.Viewer.CanSee(borrowing.UserID) {
		return core.Borrowing{}, core.ErrBorrowingNotFound
	}

	return borrowing, nil
}

// OverdueQueryHandler lists the viewer's own overdue borrowings.
type OverdueQueryHandler struct {
	store Store
}

// NewOverdueQueryHandler creates a new OverdueQueryHandler.
func NewOverdueQueryHandler(s Store) OverdueQueryHandler {
	return OverdueQueryHandler{store: s}
}

// Handle lists the open borrowings of the user expected back on or before today.
func (h OverdueQueryHandler) Handle(ctx context.Context, query OverdueQuery) (OverdueBorrowings, error) {
	userID := query.UserID
	filter := store.BorrowingFilter{UserID: &userID, OverdueOn: &query.Today}

	items, err := h.store.Borrowings(store.WithEventualConsistency(ctx), filter)
	if err != nil {
		return OverdueBorrowings{}, err
	}

	result := OverdueBorrowings{Items: make([]OverdueBorrowing, 0, len(items))}
	for _, borrowing := range items {
		result.Items = append(result.Items, OverdueBorrowing{Borrowing: borrowing, ExpiredDays: borrowing.ExpiredDays(query.Today)})
	}
	result.Count = len(result.Items)

	return result, nil
}
