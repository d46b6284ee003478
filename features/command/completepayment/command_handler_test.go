package completepayment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/checkout/fakecheckout"
	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/completepayment"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/memoryengine"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

var paidAt = time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)

type fixture struct {
	store     memoryengine.Store
	publisher *testdoubles.EventPublisherSpy
	handler   completepayment.CommandHandler
	borrowing core.Borrowing
}

func setUp(t *testing.T) fixture {
	t.Helper()

	s := memoryengine.New()
	publisher := testdoubles.NewEventPublisherSpy()

	book := core.BuildBook(uuid.New(), "Hyperion", "Dan Simmons", core.CoverHard, 1, decimal.RequireFromString("2.00"))
	require.NoError(t, s.AddBook(context.Background(), book), "error in arranging test data")

	borrowing := core.BuildBorrowing(uuid.New(), book.ID, uuid.New(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-08"))
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.ReserveCopy(ctx, book.ID); err != nil {
			return err
		}

		return tx.InsertBorrowing(ctx, borrowing)
	})
	require.NoError(t, err, "error in arranging test data")

	return fixture{
		store:     s,
		publisher: publisher,
		borrowing: borrowing,
		handler:   completepayment.NewCommandHandler(s, completepayment.WithEventPublisher(publisher)),
	}
}

func (f fixture) givenPending(t *testing.T, paymentType core.PaymentType) core.PaymentHandle {
	t.Helper()

	engine := initiatepayment.NewEngine(f.store, fakecheckout.New("https://pay.example/", "secret"))
	handle, err := engine.Initiate(context.Background(), f.borrowing, decimal.NewFromInt(8), paymentType)
	require.NoError(t, err, "error in arranging test data")

	return handle
}

func Test_Decide(t *testing.T) {
	pending := core.Payment{ID: uuid.New(), Status: core.PaymentStatusPending, Amount: decimal.NewFromInt(3)}
	completed := core.Payment{ID: uuid.New(), Status: core.PaymentStatusCompleted}
	command := completepayment.BuildCommand("cs_1", paidAt)

	assert.IsType(t, core.PaymentCompleted{}, completepayment.Decide(pending, command).Event)
	assert.True(t, completepayment.Decide(completed, command).IsIdempotent())
}

func Test_CommandHandler_Handle_RentalPayment(t *testing.T) {
	// arrange
	f := setUp(t)
	handle := f.givenPending(t, core.PaymentTypePayment)

	// act
	result, err := f.handler.Handle(context.Background(), completepayment.BuildCommand(handle.SessionID, paidAt))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	payment, err := f.store.PaymentByID(context.Background(), handle.PaymentID)
	require.NoError(t, err)
	assert.True(t, payment.IsCompleted())

	borrowing, err := f.store.BorrowingByID(context.Background(), f.borrowing.ID)
	require.NoError(t, err)
	assert.True(t, borrowing.IsActive(), "a rental fee does not end the borrowing")
	assert.Len(t, f.publisher.EventsOfType(core.PaymentCompletedEventType), 1)
	assert.Empty(t, f.publisher.EventsOfType(core.BorrowingReturnedEventType))
}

func Test_CommandHandler_Handle_Fine_ClosesBorrowing(t *testing.T) {
	// arrange
	f := setUp(t)
	handle := f.givenPending(t, core.PaymentTypeFine)

	// act
	_, err := f.handler.Handle(context.Background(), completepayment.BuildCommand(handle.SessionID, paidAt))

	// assert
	require.NoError(t, err)

	borrowing, err := f.store.BorrowingByID(context.Background(), f.borrowing.ID)
	require.NoError(t, err)
	require.NotNil(t, borrowing.ActualReturnDate)
	assert.Equal(t, "2025-03-12", borrowing.ActualReturnDate.String())

	book, err := f.store.BookByID(context.Background(), f.borrowing.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, book.Inventory)

	assert.Len(t, f.publisher.EventsOfType(core.PaymentCompletedEventType), 1)
	assert.Len(t, f.publisher.EventsOfType(core.BorrowingReturnedEventType), 1)
}

func Test_CommandHandler_Handle_SecondDeliveryIsIdempotent(t *testing.T) {
	// arrange
	f := setUp(t)
	handle := f.givenPending(t, core.PaymentTypeFine)
	command := completepayment.BuildCommand(handle.SessionID, paidAt)
	_, err := f.handler.Handle(context.Background(), command)
	require.NoError(t, err, "error in arranging test data")

	// act
	result, err := f.handler.Handle(context.Background(), command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Len(t, f.publisher.Events(), 2, "no events for the second delivery")

	book, err := f.store.BookByID(context.Background(), f.borrowing.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, book.Inventory)
}

func Test_CommandHandler_Handle_ConcurrentDeliveries(t *testing.T) {
	// arrange
	f := setUp(t)
	handle := f.givenPending(t, core.PaymentTypeFine)
	command := completepayment.BuildCommand(handle.SessionID, paidAt)

	var wg sync.WaitGroup
	results := make([]bool, 10)
	errs := make([]error, 10)

	// act
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.handler.Handle(context.Background(), command)
			results[i], errs[i] = result.Idempotent, err
		}()
	}
	wg.Wait()

	// assert
	nonIdempotent := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, errs[i])
		if !results[i] {
			nonIdempotent++
		}
	}
	assert.Equal(t, 1, nonIdempotent)

	book, err := f.store.BookByID(context.Background(), f.borrowing.BookID)
	require.NoError(t, err)
	assert.Equal(t, 1, book.Inventory)
}

func Test_CommandHandler_Handle_UnknownSession(t *testing.T) {
	// arrange
	f := setUp(t)

	// act
	_, err := f.handler.Handle(context.Background(), completepayment.BuildCommand("cs_unknown", paidAt))

	// assert
	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
	assert.Empty(t, f.publisher.Events())
}
