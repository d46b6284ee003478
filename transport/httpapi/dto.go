package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/query/borrowings"
)

type addBookRequest struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	Cover     string `json:"cover" validate:"required,oneof=HARD SOFT"`
	Inventory *int   `json:"inventory" validate:"required,gte=0"`
	DailyFee  string `json:"daily_fee" validate:"required,numeric"`
}

type createBorrowingRequest struct {
	BookID             string `json:"book_id" validate:"required,uuid"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
}

type linkChannelRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
}

type bookResponse struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Cover     core.Cover      `json:"cover"`
	Inventory int             `json:"inventory"`
	DailyFee  decimal.Decimal `json:"daily_fee"`
}

func bookResponseOf(book core.Book) bookResponse {
	return bookResponse{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Cover:     book.Cover,
		Inventory: book.Inventory,
		DailyFee:  book.DailyFee,
	}
}

type borrowingResponse struct {
	ID                 uuid.UUID  `json:"id"`
	BookID             uuid.UUID  `json:"book_id"`
	UserID             uuid.UUID  `json:"user_id"`
	BorrowDate         core.Date  `json:"borrow_date"`
	ExpectedReturnDate core.Date  `json:"expected_return_date"`
	ActualReturnDate   *core.Date `json:"actual_return_date"`
	IsActive           bool       `json:"is_active"`
	ExpiredDays        *int       `json:"expired_days,omitempty"`
}

func borrowingResponseOf(borrowing core.Borrowing) borrowingResponse {
	return borrowingResponse{
		ID:                 borrowing.ID,
		BookID:             borrowing.BookID,
		UserID:             borrowing.UserID,
		BorrowDate:         borrowing.BorrowDate,
		ExpectedReturnDate: borrowing.ExpectedReturnDate,
		ActualReturnDate:   borrowing.ActualReturnDate,
		IsActive:           borrowing.IsActive(),
	}
}

func overdueResponseOf(overdue borrowings.OverdueBorrowing) borrowingResponse {
	response := borrowingResponseOf(overdue.Borrowing)
	expiredDays := overdue.ExpiredDays
	response.ExpiredDays = &expiredDays

	return response
}

type paymentHandleResponse struct {
	PaymentID   uuid.UUID        `json:"payment_id"`
	Type        core.PaymentType `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	SessionID   string           `json:"session_id"`
	CheckoutURL string           `json:"checkout_url"`
}

func paymentHandleResponseOf(handle core.PaymentHandle) paymentHandleResponse {
	return paymentHandleResponse{
		PaymentID:   handle.PaymentID,
		Type:        handle.Type,
		Amount:      handle.Amount,
		SessionID:   handle.SessionID,
		CheckoutURL: handle.SessionURL,
	}
}

type paymentResponse struct {
	ID          uuid.UUID          `json:"id"`
	BorrowingID uuid.UUID          `json:"borrowing_id"`
	Type        core.PaymentType   `json:"type"`
	Status      core.PaymentStatus `json:"status"`
	SessionID   string             `json:"session_id"`
	SessionURL  string             `json:"session_url"`
	Amount      decimal.Decimal    `json:"amount"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at"`
}

func paymentResponseOf(payment core.Payment) paymentResponse {
	return paymentResponse{
		ID:          payment.ID,
		BorrowingID: payment.BorrowingID,
		Type:        payment.Type,
		Status:      payment.Status,
		SessionID:   payment.SessionID,
		SessionURL:  payment.SessionURL,
		Amount:      payment.Amount,
		CreatedAt:   payment.CreatedAt,
		CompletedAt: payment.CompletedAt,
	}
}

type createdBorrowingResponse struct {
	Borrowing    borrowingResponse      `json:"borrowing"`
	Payment      *paymentHandleResponse `json:"payment,omitempty"`
	PaymentError string                 `json:"payment_error,omitempty"`
}

type returnResponse struct {
	Borrowing *borrowingResponse     `json:"borrowing,omitempty"`
	Payment   *paymentHandleResponse `json:"payment,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func listResponseOf[S any, T any](items []S, mapper func(S) T) listResponse[T] {
	mapped := make([]T, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, mapper(item))
	}

	return listResponse[T]{Items: mapped, Count: len(mapped)}
}

type scanResponse struct {
	Overdue  int `json:"overdue"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	AllClear int `json:"all_clear"`
}

type channelResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	ChannelID string    `json:"channel_id"`
}
