package borrowings

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

const (
	listQueryType    = "ListBorrowings"
	detailQueryType  = "BorrowingDetail"
	overdueQueryType = "MyOverdueBorrowings"
)

// ListQuery represents the intent to list borrowings.
type ListQuery struct {
	Viewer   core.Viewer
	UserID   *uuid.UUID // honored for staff only
	IsActive *bool
}

// BuildListQuery creates a new ListQuery.
func BuildListQuery(viewer core.Viewer, userID *uuid.UUID, isActive *bool) ListQuery {
	return ListQuery{
		Viewer:   viewer,
		UserID:   userID,
		IsActive: isActive,
	}
}

// QueryType returns the query type.
func (q ListQuery) QueryType() string {
	return listQueryType
}

// DetailQuery represents the intent to read one borrowing.
type DetailQuery struct {
	Viewer      core.Viewer
	BorrowingID uuid.UUID
}

// BuildDetailQuery creates a new DetailQuery.
func BuildDetailQuery(viewer core.Viewer, borrowingID uuid.UUID) DetailQuery {
	return DetailQuery{
		Viewer:      viewer,
		BorrowingID: borrowingID,
	}
}

// QueryType returns the query type.
func (q DetailQuery) QueryType() string {
	return detailQueryType
}

// OverdueQuery represents the intent to list the viewer's own overdue borrowings.
type OverdueQuery struct {
	UserID uuid.UUID
	Today  core.Date
}

// BuildOverdueQuery creates a new OverdueQuery for the calendar day of now.
func BuildOverdueQuery(userID uuid.UUID, now time.Time) OverdueQuery {
	return OverdueQuery{
		UserID: userID,
		Today:  core.DateOf(now),
	}
}

// QueryType returns the query type.
func (q OverdueQuery) QueryType() string {
	return overdueQueryType
}
