package initiatepayment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/checkout/fakecheckout"
	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/initiatepayment"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/memoryengine"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func givenBorrowing(t *testing.T, s memoryengine.Store) (core.Book, core.Borrowing) {
	t.Helper()

	book := core.BuildBook(uuid.New(), "Solaris", "Stanislaw Lem", core.CoverSoft, 1, decimal.RequireFromString("1.25"))
	require.NoError(t, s.AddBook(context.Background(), book), "error in arranging test data")

	borrowing := core.BuildBorrowing(uuid.New(), book.ID, uuid.New(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-05"))
	err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.ReserveCopy(ctx, book.ID); err != nil {
			return err
		}

		return tx.InsertBorrowing(ctx, borrowing)
	})
	require.NoError(t, err, "error in arranging test data")

	return book, borrowing
}

func newEngine(s memoryengine.Store, provider *fakecheckout.Provider) initiatepayment.Engine {
	return initiatepayment.NewEngine(s, provider, initiatepayment.WithClock(func() time.Time { return fixedNow }))
}

func Test_Engine_Initiate_PersistsPendingPayment(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)

	// act
	handle, err := newEngine(s, provider).Initiate(context.Background(), borrowing, decimal.RequireFromString("10.00"), core.PaymentTypeFine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, core.PaymentTypeFine, handle.Type)
	assert.Equal(t, "https://pay.example/"+handle.SessionID, handle.SessionURL)

	payment, err := s.PaymentByID(context.Background(), handle.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, core.PaymentStatusPending, payment.Status)
	assert.Equal(t, borrowing.ID, payment.BorrowingID)
	assert.Equal(t, fixedNow, payment.CreatedAt)

	requests := provider.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, borrowing.ID.String(), requests[0].Reference)
	assert.Contains(t, requests[0].Description, "Late return fine")
}

func Test_Engine_Initiate_ReusesPendingPayment_OfTheSameAmount(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)
	engine := newEngine(s, provider)
	first, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)
	require.NoError(t, err, "error in arranging test data")

	// act
	second, err := engine.Initiate(context.Background(), borrowing, decimal.RequireFromString("10.00"), core.PaymentTypeFine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, provider.Requests(), 1)
	assert.Empty(t, provider.Expired())
}

func Test_Engine_Initiate_RepricesPendingPayment_OfAnotherAmount(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)
	engine := newEngine(s, provider)
	first, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)
	require.NoError(t, err, "error in arranging test data")

	// act
	second, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(85), core.PaymentTypeFine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.True(t, decimal.NewFromInt(85).Equal(second.Amount))
	assert.Equal(t, []string{first.SessionID}, provider.Expired())

	requests := provider.Requests()
	require.Len(t, requests, 2)
	assert.True(t, decimal.NewFromInt(85).Equal(requests[1].Amount))

	stored, err := s.PaymentByID(context.Background(), first.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, second.SessionID, stored.SessionID)
	assert.True(t, decimal.NewFromInt(85).Equal(stored.Amount))

	fines, err := s.Payments(context.Background(), store.PaymentFilter{BorrowingID: &borrowing.ID})
	require.NoError(t, err)
	assert.Len(t, fines, 1)
}

// racingStore lets another request insert its payment right before the engine's own insert.
type racingStore struct {
	memoryengine.Store
	calls  int
	before func()
}

func (r *racingStore) InTx(ctx context.Context, fn store.TxFunc) error {
	r.calls++
	if r.calls == 2 {
		r.before()
	}

	return r.Store.InTx(ctx, fn)
}

func Test_Engine_Initiate_LosingTheInsertRace_ExpiresItsOwnSession(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)
	winner := core.BuildPendingPayment(uuid.New(), borrowing.ID, core.PaymentTypeFine,
		core.CheckoutSession{ID: "cs_winner", URL: "https://pay.example/cs_winner"}, decimal.NewFromInt(10), fixedNow)
	racing := &racingStore{Store: s, before: func() {
		err := s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			return tx.InsertPayment(ctx, winner)
		})
		require.NoError(t, err, "error in arranging test data")
	}}
	engine := initiatepayment.NewEngine(racing, provider, initiatepayment.WithClock(func() time.Time { return fixedNow }))

	// act
	handle, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)

	// assert
	require.NoError(t, err)
	assert.Equal(t, winner.Handle(), handle)

	requests := provider.Requests()
	require.Len(t, requests, 1)
	expired := provider.Expired()
	require.Len(t, expired, 1)
	assert.NotEqual(t, "cs_winner", expired[0])
}

func Test_Engine_Initiate_LogsSessionsItCannotExpire(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	logger := testdoubles.NewLoggerSpy()
	_, borrowing := givenBorrowing(t, s)
	engine := initiatepayment.NewEngine(s, provider, initiatepayment.WithEngineLogger(logger))
	_, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)
	require.NoError(t, err, "error in arranging test data")
	expireFails := &failingExpiry{Provider: provider}
	engine = initiatepayment.NewEngine(s, expireFails, initiatepayment.WithEngineLogger(logger))

	// act
	_, err = engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(20), core.PaymentTypeFine)

	// assert
	require.NoError(t, err)
	assert.True(t, logger.HasWarnLog("expiring checkout session failed"))
}

type failingExpiry struct {
	*fakecheckout.Provider
}

func (f *failingExpiry) ExpireSession(_ context.Context, _ string) error {
	return fakecheckout.ErrProviderUnavailable
}

func Test_Engine_Initiate_PaymentAndFineAreIndependent(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)
	engine := newEngine(s, provider)

	// act
	payment, paymentErr := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(5), core.PaymentTypePayment)
	fine, fineErr := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)

	// assert
	require.NoError(t, paymentErr)
	require.NoError(t, fineErr)
	assert.NotEqual(t, payment.PaymentID, fine.PaymentID)
}

func Test_Engine_Initiate_NothingPersisted_WhenCheckoutFails(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	provider.SetFailing(true)
	_, borrowing := givenBorrowing(t, s)

	// act
	_, err := newEngine(s, provider).Initiate(context.Background(), borrowing, decimal.NewFromInt(10), core.PaymentTypeFine)

	// assert
	assert.ErrorIs(t, err, core.ErrSessionCreationFailed)
	assert.ErrorIs(t, err, fakecheckout.ErrProviderUnavailable)

	payments, listErr := s.Payments(context.Background(), store.PaymentFilter{BorrowingID: &borrowing.ID})
	require.NoError(t, listErr)
	assert.Empty(t, payments)
}

func Test_Engine_Initiate_RejectsNonPositiveAmount(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)

	// act
	_, err := newEngine(s, provider).Initiate(context.Background(), borrowing, decimal.Zero, core.PaymentTypePayment)

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Empty(t, provider.Requests())
}

func Test_Engine_Initiate_AlreadyPaid(t *testing.T) {
	// arrange
	s := memoryengine.New()
	provider := fakecheckout.New("https://pay.example/", "secret")
	_, borrowing := givenBorrowing(t, s)
	engine := newEngine(s, provider)
	handle, err := engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(5), core.PaymentTypePayment)
	require.NoError(t, err, "error in arranging test data")
	err = s.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.MarkPaymentCompleted(ctx, handle.PaymentID, fixedNow)
	})
	require.NoError(t, err, "error in arranging test data")

	// act
	_, err = engine.Initiate(context.Background(), borrowing, decimal.NewFromInt(5), core.PaymentTypePayment)

	// assert
	assert.ErrorIs(t, err, initiatepayment.ErrAlreadyPaid)
}
