package memoryengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Store is the in-memory rental store. Use New to create one; copies share the same state.
type Store struct {
	state *state
}

type state struct {
	mu         sync.Mutex
	books      map[uuid.UUID]core.Book
	borrowings map[uuid.UUID]storedBorrowing
	payments   map[uuid.UUID]core.Payment
	channels   map[uuid.UUID]string
	seq        int64
}

type storedBorrowing struct {
	core.Borrowing
	seq int64
}

// New creates an empty Store.
func New() Store {
	return Store{state: &state{
		books:      make(map[uuid.UUID]core.Book),
		borrowings: make(map[uuid.UUID]storedBorrowing),
		payments:   make(map[uuid.UUID]core.Payment),
		channels:   make(map[uuid.UUID]string),
	}}
}

// InTx runs fn with exclusive access to the store. The changes of a failed fn are discarded.
func (s Store) InTx(ctx context.Context, fn store.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	snapshot := s.state.snapshot()

	if err := fn(ctx, memTx{state: s.state}); err != nil {
		s.state.restore(snapshot)
		return err
	}

	return nil
}

// AddBook inserts a catalog entry. The daily fee is kept in cents, as in the Postgres engine.
func (s Store) AddBook(_ context.Context, book core.Book) error {
	if book.Inventory < 0 {
		return core.ErrInvalidInventory
	}

	book.DailyFee = core.RoundMoney(book.DailyFee)

	if !book.DailyFee.IsPositive() {
		return core.ErrInvalidAmount
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	s.state.books[book.ID] = book

	return nil
}

// BookByID reads a book, including its current inventory.
func (s Store) BookByID(_ context.Context, bookID uuid.UUID) (core.Book, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	return s.state.book(bookID)
}

// BorrowingByID reads a borrowing.
func (s Store) BorrowingByID(_ context.Context, borrowingID uuid.UUID) (core.Borrowing, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	return s.state.borrowing(borrowingID)
}

// Borrowings lists borrowings matching filter, most recent first.
func (s Store) Borrowings(_ context.Context, filter store.BorrowingFilter) ([]core.Borrowing, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	matching := make([]storedBorrowing, 0, len(s.state.borrowings))
	for _, b := range s.state.borrowings {
		if matchesBorrowing(b.Borrowing, filter) {
			matching = append(matching, b)
		}
	}

	slices.SortFunc(matching, func(a, b storedBorrowing) int {
		if c := b.BorrowDate.Time().Compare(a.BorrowDate.Time()); c != 0 {
			return c
		}

		return int(b.seq - a.seq)
	})

	result := make([]core.Borrowing, 0, len(matching))
	for _, b := range matching {
		result = append(result, b.Borrowing)
	}

	return result, nil
}

// EarliestExpectedReturn returns the earliest expected return date among the open borrowings of a book,
// or nil when the book has none.
func (s Store) EarliestExpectedReturn(_ context.Context, bookID uuid.UUID) (*core.Date, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	var earliest *core.Date
	for _, b := range s.state.borrowings {
		if b.BookID != bookID || !b.IsActive() {
			continue
		}

		if earliest == nil || b.ExpectedReturnDate.Before(*earliest) {
			expected := b.ExpectedReturnDate
			earliest = &expected
		}
	}

	return earliest, nil
}

// PaymentByID reads a payment.
func (s Store) PaymentByID(_ context.Context, paymentID uuid.UUID) (core.Payment, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	payment, ok := s.state.payments[paymentID]
	if !ok {
		return core.Payment{}, core.ErrPaymentNotFound
	}

	return payment, nil
}

// Payments lists payments matching filter, most recent first.
func (s Store) Payments(_ context.Context, filter store.PaymentFilter) ([]core.Payment, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	result := make([]core.Payment, 0, len(s.state.payments))
	for _, p := range s.state.payments {
		if filter.BorrowingID != nil && p.BorrowingID != *filter.BorrowingID {
			continue
		}

		if filter.UserID != nil {
			owner, ok := s.state.borrowings[p.BorrowingID]
			if !ok || owner.UserID != *filter.UserID {
				continue
			}
		}

		result = append(result, p)
	}

	slices.SortFunc(result, func(a, b core.Payment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return result, nil
}

// LinkChannel links, or relinks, a user to a notification channel.
func (s Store) LinkChannel(_ context.Context, link store.ChannelLink) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	s.state.channels[link.UserID] = link.ChannelID

	return nil
}

// ChannelOf returns the notification channel linked to a user, if any.
func (s Store) ChannelOf(_ context.Context, userID uuid.UUID) (string, bool, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	channelID, ok := s.state.channels[userID]

	return channelID, ok, nil
}

// ChannelLinks lists every user with a linked notification channel, ordered by user id.
func (s Store) ChannelLinks(_ context.Context) ([]store.ChannelLink, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	links := make([]store.ChannelLink, 0, len(s.state.channels))
	for userID, channelID := range s.state.channels {
		links = append(links, store.ChannelLink{UserID: userID, ChannelID: channelID})
	}

	slices.SortFunc(links, func(a, b store.ChannelLink) int {
		return slices.Compare(a.UserID[:], b.UserID[:])
	})

	return links, nil
}

func matchesBorrowing(b core.Borrowing, filter store.BorrowingFilter) bool {
	if filter.UserID != nil && b.UserID != *filter.UserID {
		return false
	}

	if filter.BookID != nil && b.BookID != *filter.BookID {
		return false
	}

	if filter.IsActive != nil && b.IsActive() != *filter.IsActive {
		return false
	}

	if filter.OverdueOn != nil && !b.IsOverdueOn(*filter.OverdueOn) {
		return false
	}

	return true
}

func (st *state) book(bookID uuid.UUID) (core.Book, error) {
	book, ok := st.books[bookID]
	if !ok {
		return core.Book{}, core.ErrBookNotFound
	}

	return book, nil
}

func (st *state) borrowing(borrowingID uuid.UUID) (core.Borrowing, error) {
	b, ok := st.borrowings[borrowingID]
	if !ok {
		return core.Borrowing{}, core.ErrBorrowingNotFound
	}

	return b.Borrowing, nil
}

type snapshot struct {
	books      map[uuid.UUID]core.Book
	borrowings map[uuid.UUID]storedBorrowing
	payments   map[uuid.UUID]core.Payment
	channels   map[uuid.UUID]string
	seq        int64
}

// snapshot copies the state. Entities are values, except the pointers inside them, which are never mutated in place.
func (st *state) snapshot() snapshot {
	return snapshot{
		books:      cloneMap(st.books),
		borrowings: cloneMap(st.borrowings),
		payments:   cloneMap(st.payments),
		channels:   cloneMap(st.channels),
		seq:        st.seq,
	}
}

func (st *state) restore(s snapshot) {
	st.books = s.books
	st.borrowings = s.borrowings
	st.payments = s.payments
	st.channels = s.channels
	st.seq = s.seq
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	clone := make(map[K]V, len(m))
	for k, v := range m {
		clone[k] = v
	}

	return clone
}

// memTx implements store.Tx on the state; the engine's lock is held by InTx.
type memTx struct {
	state *state
}

func (t memTx) ReserveCopy(_ context.Context, bookID uuid.UUID) error {
	book, err := t.state.book(bookID)
	if err != nil {
		return err
	}

	if book.Inventory <= 0 {
		return core.ErrOutOfStock
	}

	book.Inventory--
	t.state.books[bookID] = book

	return nil
}

func (t memTx) ReleaseCopy(_ context.Context, bookID uuid.UUID) error {
	book, err := t.state.book(bookID)
	if err != nil {
		return err
	}

	book.Inventory++
	t.state.books[bookID] = book

	return nil
}

func (t memTx) BookByID(_ context.Context, bookID uuid.UUID) (core.Book, error) {
	return t.state.book(bookID)
}

func (t memTx) LockBorrowing(_ context.Context, borrowingID uuid.UUID) (core.Borrowing, error) {
	return t.state.borrowing(borrowingID)
}

func (t memTx) HasActiveBorrowing(_ context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error) {
	for _, b := range t.state.borrowings {
		if b.UserID == userID && b.BookID == bookID && b.IsActive() {
			return true, nil
		}
	}

	return false, nil
}

func (t memTx) InsertBorrowing(ctx context.Context, borrowing core.Borrowing) error {
	if _, err := t.state.book(borrowing.BookID); err != nil {
		return err
	}

	if borrowing.ExpectedReturnDate.Before(borrowing.BorrowDate) {
		return core.ErrInvalidDateRange
	}

	if borrowing.IsActive() {
		active, _ := t.HasActiveBorrowing(ctx, borrowing.UserID, borrowing.BookID)
		if active {
			return core.ErrDuplicateActiveBorrowing
		}
	}

	t.state.seq++
	t.state.borrowings[borrowing.ID] = storedBorrowing{Borrowing: borrowing, seq: t.state.seq}

	return nil
}

func (t memTx) CloseBorrowing(_ context.Context, borrowingID uuid.UUID, returnDate core.Date) error {
	stored, ok := t.state.borrowings[borrowingID]
	if !ok || !stored.IsActive() {
		return store.ErrConcurrencyConflict
	}

	if returnDate.Before(stored.BorrowDate) {
		return core.ErrInvalidDateRange
	}

	stored.Borrowing = stored.ClosedOn(returnDate)
	t.state.borrowings[borrowingID] = stored

	return nil
}

func (t memTx) PaymentOfType(
	_ context.Context,
	borrowingID uuid.UUID,
	paymentType core.PaymentType,
) (core.Payment, bool, error) {

	for _, p := range t.state.payments {
		if p.BorrowingID == borrowingID && p.Type == paymentType {
			return p, true, nil
		}
	}

	return core.Payment{}, false, nil
}

func (t memTx) InsertPayment(ctx context.Context, payment core.Payment) error {
	if _, ok := t.state.borrowings[payment.BorrowingID]; !ok {
		return core.ErrBorrowingNotFound
	}

	if !payment.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if _, exists, _ := t.PaymentOfType(ctx, payment.BorrowingID, payment.Type); exists {
		return store.ErrDuplicatePayment
	}

	for _, p := range t.state.payments {
		if p.SessionID == payment.SessionID {
			return store.ErrWritingFailed
		}
	}

	t.state.payments[payment.ID] = payment

	return nil
}

func (t memTx) ReplacePendingSession(
	_ context.Context,
	stale core.Payment,
	session core.CheckoutSession,
	amount decimal.Decimal,
) error {

	payment, ok := t.state.payments[stale.ID]
	if !ok || payment.IsCompleted() || payment.SessionID != stale.SessionID {
		return store.ErrConcurrencyConflict
	}

	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	payment.SessionID, payment.SessionURL, payment.Amount = session.ID, session.URL, amount
	t.state.payments[stale.ID] = payment

	return nil
}

func (t memTx) LockPaymentBySessionID(_ context.Context, sessionID string) (core.Payment, error) {
	for _, p := range t.state.payments {
		if p.SessionID == sessionID {
			return p, nil
		}
	}

	return core.Payment{}, core.ErrPaymentNotFound
}

func (t memTx) MarkPaymentCompleted(_ context.Context, paymentID uuid.UUID, completedAt time.Time) error {
	payment, ok := t.state.payments[paymentID]
	if !ok || payment.IsCompleted() {
		return store.ErrConcurrencyConflict
	}

	completed := completedAt.UTC()
	payment.Status = core.PaymentStatusCompleted
	payment.CompletedAt = &completed
	t.state.payments[paymentID] = payment

	return nil
}
