package initiatepayment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// ReadStore defines the reads the CommandHandler needs.
type ReadStore interface {
	BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error)
	BookByID(ctx context.Context, bookID uuid.UUID) (core.Book, error)
}

// PaymentInitiator is implemented by Engine.
type PaymentInitiator interface {
	Initiate(ctx context.Context, borrowing core.Borrowing, amount decimal.Decimal, paymentType core.PaymentType) (core.PaymentHandle, error)
}

// CommandHandler initiates the rental fee payment of an existing borrowing.
type CommandHandler struct {
	store    ReadStore
	payments PaymentInitiator
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(s ReadStore, payments PaymentInitiator) CommandHandler {
	return CommandHandler{
		store:    s,
		payments: payments,
	}
}

// Handle executes the workflow: read borrowing and book -> Decide -> Initiate.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	noRetries := shell.RetryMetrics{Attempts: 1, LastErrorType: "none"}

	ctx = store.WithStrongConsistency(ctx)

	borrowing, err := h.store.BorrowingByID(ctx, command.BorrowingID)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	book, err := h.store.BookByID(ctx, borrowing.BookID)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	decision := Decide(borrowing, book, command)
	if err = decision.HasError(); err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	handle, err := h.payments.Initiate(ctx, borrowing, decision.Charge, core.PaymentTypePayment)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	return Result{HandlerResult: shell.NewSuccessResult(noRetries), Payment: handle}, nil
}
