package returnborrowing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/checkout/fakecheckout"
	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/features/command/returnborrowing"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/memoryengine"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

type fixture struct {
	store     memoryengine.Store
	checkout  *fakecheckout.Provider
	publisher *testdoubles.EventPublisherSpy
	handler   returnborrowing.CommandHandler
	borrowing core.Borrowing
}

func setUp(t *testing.T) fixture {
	t.Helper()

	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	publisher := testdoubles.NewEventPublisherSpy()

	book, borrowing := givenBookAndBorrowing()
	book.Inventory = 1
	require.NoError(t, s.AddBook(context.Background(), book), "error in arranging test data")

	err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.ReserveCopy(ctx, book.ID); err != nil {
			return err
		}

		return tx.InsertBorrowing(ctx, borrowing)
	})
	require.NoError(t, err, "error in arranging test data")

	return fixture{
		store:     s,
		checkout:  provider,
		publisher: publisher,
		borrowing: borrowing,
		handler: returnborrowing.NewCommandHandler(
			s,
			initiatepayment.NewEngine(s, provider),
			returnborrowing.WithEventPublisher(publisher),
		),
	}
}

func (f fixture) inventory(t *testing.T) int {
	t.Helper()

	book, err := f.store.BookByID(context.Background(), f.borrowing.BookID)
	require.NoError(t, err)

	return book.Inventory
}

func Test_CommandHandler_Handle_OnTime(t *testing.T) {
	// arrange
	f := setUp(t)

	// act
	result, err := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, onTime))

	// assert
	require.NoError(t, err)
	assert.False(t, result.IsPaymentRequired())
	assert.Equal(t, 1, f.inventory(t))

	loaded, err := f.store.BorrowingByID(context.Background(), f.borrowing.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ActualReturnDate)
	assert.Equal(t, "2025-03-08", loaded.ActualReturnDate.String())
	assert.Len(t, f.publisher.EventsOfType(core.BorrowingReturnedEventType), 1)
}

func Test_CommandHandler_Handle_Late_OpensFineAndKeepsBorrowingOpen(t *testing.T) {
	// arrange
	f := setUp(t)

	// act
	result, err := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, threeLate))

	// assert
	require.NoError(t, err)
	assert.True(t, result.IsPaymentRequired())
	require.NotNil(t, result.Payment)
	assert.Equal(t, core.PaymentTypeFine, result.Payment.Type)
	assert.True(t, decimal.NewFromInt(9).Equal(result.Payment.Amount))
	assert.Equal(t, 0, f.inventory(t))

	loaded, err := f.store.BorrowingByID(context.Background(), f.borrowing.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsActive())

	requested := f.publisher.EventsOfType(core.FinePaymentRequestedEventType)
	require.Len(t, requested, 1)
	assert.Equal(t, 3, requested[0].(core.FinePaymentRequested).ExpiredDays)
	assert.Empty(t, f.publisher.EventsOfType(core.BorrowingReturnedEventType))
}

func Test_CommandHandler_Handle_Late_ReusesPendingFine_OnTheSameDay(t *testing.T) {
	// arrange
	f := setUp(t)
	command := returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, threeLate)
	first, err := f.handler.Handle(context.Background(), command)
	require.NoError(t, err, "error in arranging test data")

	// act
	second, err := f.handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.Equal(t, first.Payment.SessionID, second.Payment.SessionID)
	assert.Len(t, f.checkout.Requests(), 1)
}

func Test_CommandHandler_Handle_Late_RepricesPendingFine_OnALaterDay(t *testing.T) {
	// arrange
	f := setUp(t)
	first, err := f.handler.Handle(context.Background(),
		returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, threeLate))
	require.NoError(t, err, "error in arranging test data")

	// act
	second, err := f.handler.Handle(context.Background(),
		returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, threeLate.AddDate(0, 0, 30)))

	// assert
	require.NoError(t, err)
	require.NotNil(t, second.Payment)
	assert.True(t, decimal.NewFromInt(99).Equal(second.Payment.Amount), "33 days late at 1.50 doubled")
	assert.True(t, second.Payment.Amount.GreaterThan(first.Payment.Amount))
	assert.Equal(t, first.Payment.PaymentID, second.Payment.PaymentID)
	assert.Equal(t, []string{first.Payment.SessionID}, f.checkout.Expired())

	fine, err := f.store.PaymentByID(context.Background(), second.Payment.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, second.Payment.SessionID, fine.SessionID)
	assert.True(t, decimal.NewFromInt(99).Equal(fine.Amount))
}

func Test_CommandHandler_Handle_Late_CheckoutFails(t *testing.T) {
	// arrange
	f := setUp(t)
	f.checkout.SetFailing(true)

	// act
	_, err := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, threeLate))

	// assert
	assert.ErrorIs(t, err, core.ErrSessionCreationFailed)
	assert.Empty(t, f.publisher.Events())
}

func Test_CommandHandler_Handle_AlreadyReturned(t *testing.T) {
	// arrange
	f := setUp(t)
	command := returnborrowing.BuildCommand(f.borrowing.ID, f.borrowing.UserID, false, onTime)
	_, err := f.handler.Handle(context.Background(), command)
	require.NoError(t, err, "error in arranging test data")

	// act
	_, err = f.handler.Handle(context.Background(), command)

	// assert
	assert.ErrorIs(t, err, core.ErrAlreadyReturned)
	assert.Equal(t, 1, f.inventory(t), "the copy is released once")
}

func Test_CommandHandler_Handle_NotTheCallersBorrowing(t *testing.T) {
	// arrange
	f := setUp(t)

	// act
	_, userErr := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(f.borrowing.ID, uuid.New(), false, onTime))
	_, staffErr := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(f.borrowing.ID, uuid.New(), true, onTime))

	// assert
	assert.ErrorIs(t, userErr, core.ErrBorrowingNotFound)
	assert.NoError(t, staffErr)
}

func Test_CommandHandler_Handle_UnknownBorrowing(t *testing.T) {
	// arrange
	f := setUp(t)

	// act
	_, err := f.handler.Handle(context.Background(), returnborrowing.BuildCommand(uuid.New(), uuid.New(), true, onTime))

	// assert
	assert.ErrorIs(t, err, core.ErrBorrowingNotFound)
}
