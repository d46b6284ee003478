package payments

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

const (
	listQueryType   = "ListPayments"
	detailQueryType = "PaymentDetail"
)

// ListQuery represents the intent to list payments.
type ListQuery struct {
	Viewer      core.Viewer
	BorrowingID *uuid.UUID
}

// BuildListQuery creates a new ListQuery.
func BuildListQuery(viewer core.Viewer, borrowingID *uuid.UUID) ListQuery {
	return ListQuery{
		Viewer:      viewer,
		BorrowingID: borrowingID,
	}
}

// QueryType returns the query type.
func (q ListQuery) QueryType() string {
	return listQueryType
}

// DetailQuery represents the intent to read one payment.
type DetailQuery struct {
	Viewer    core.Viewer
	PaymentID uuid.UUID
}

// BuildDetailQuery creates a new DetailQuery.
func BuildDetailQuery(viewer core.Viewer, paymentID uuid.UUID) DetailQuery {
	return DetailQuery{
		Viewer:    viewer,
		PaymentID: paymentID,
	}
}

// QueryType returns the query type.
func (q DetailQuery) QueryType() string {
	return detailQueryType
}
