package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine/internal/adapters"
)

const (
	logMsgBuildQueryFailed    = "failed to build sql statement"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgBeginTxFailed       = "failed to begin transaction"
	logMsgCommitFailed        = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSQLExecuted         = "executed sql for: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrOperation          = "operation"
	logAttrDurationMS         = "duration_ms"
	logAttrRowsAffected       = "rows_affected"
	metricStoreOperationDur   = "store_operation_duration_seconds"
	metricStoreConflicts      = "store_concurrency_conflicts_total"
	statusSuccess             = "success"
	statusError               = "error"
	opAddBook                 = "add_book"
	opBookByID                = "book_by_id"
	opBookExists              = "book_exists"
	opReserveCopy             = "reserve_copy"
	opReleaseCopy             = "release_copy"
	opBorrowingByID           = "borrowing_by_id"
	opLockBorrowing           = "lock_borrowing"
	opBorrowings              = "borrowings"
	opHasActiveBorrowing      = "has_active_borrowing"
	opEarliestExpectedReturn  = "earliest_expected_return"
	opInsertBorrowing         = "insert_borrowing"
	opCloseBorrowing          = "close_borrowing"
	opPaymentOfType           = "payment_of_type"
	opPaymentByID             = "payment_by_id"
	opPayments                = "payments"
	opLockPaymentBySessionID  = "lock_payment_by_session_id"
	opInsertPayment           = "insert_payment"
	opReplacePendingSession   = "replace_pending_session"
	opMarkPaymentCompleted    = "mark_payment_completed"
	opLinkChannel             = "link_channel"
	opChannelOf               = "channel_of"
	opChannelLinks            = "channel_links"
)

// Logger interface for SQL query logging, operational information, warnings, and error reporting.
type Logger = store.Logger

// Store is the PostgreSQL implementation of the rental store.
// It is a small value type and safe for concurrent use; all state lives in the database.
type Store struct {
	db               adapters.DBAdapter
	logger           Logger
	metricsCollector store.MetricsCollector
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives the duration of every statement and a counter of concurrency conflicts.
func WithMetrics(collector store.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary and a replica pgx Pool.
// Reads run on the replica when the context asks for eventual consistency.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using a primary and a replica sql.DB.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

// NewStoreFromSQLXAndReplica creates a new Store using a primary and a replica sqlx.DB.
func NewStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, store.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{db: db}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// InTx runs fn inside a read committed transaction on the primary database.
// The transaction commits when fn returns nil and rolls back otherwise.
// A deadlock or serialization failure at commit time is reported as store.ErrConcurrencyConflict.
func (s Store) InTx(ctx context.Context, fn store.TxFunc) error {
	dbTx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.logError(logMsgBeginTxFailed, err)
		return translateError(err, store.ErrTransactionFailed)
	}

	tx := pgTx{session: s.session(dbTx, dbTx.Query)}

	if fnErr := fn(ctx, tx); fnErr != nil {
		if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			s.logWarn(logMsgRollbackFailed, rollbackErr)
		}

		return fnErr
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		s.logError(logMsgCommitFailed, commitErr)
		return translateError(commitErr, store.ErrTransactionFailed)
	}

	return nil
}

// AddBook inserts a catalog entry.
func (s Store) AddBook(ctx context.Context, book core.Book) error {
	sqlQuery, err := buildInsertBookQuery(book)
	if err != nil {
		return s.buildFailed(err)
	}

	_, err = s.primary().exec(ctx, opAddBook, sqlQuery)

	return err
}

// BookByID reads a book, including its current inventory.
func (s Store) BookByID(ctx context.Context, bookID uuid.UUID) (core.Book, error) {
	return selectBook(ctx, s.reader(ctx), bookID)
}

// BorrowingByID reads a borrowing.
func (s Store) BorrowingByID(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error) {
	sqlQuery, err := buildSelectBorrowingQuery(borrowingID, false)
	if err != nil {
		return core.Borrowing{}, s.buildFailed(err)
	}

	return queryOne(ctx, s.reader(ctx), opBorrowingByID, sqlQuery, scanBorrowing, core.ErrBorrowingNotFound)
}

// Borrowings lists borrowings matching filter, most recent first.
func (s Store) Borrowings(ctx context.Context, filter store.BorrowingFilter) ([]core.Borrowing, error) {
	sqlQuery, err := buildSelectBorrowingsQuery(filter)
	if err != nil {
		return nil, s.buildFailed(err)
	}

	return queryAll(ctx, s.reader(ctx), opBorrowings, sqlQuery, scanBorrowing)
}

// EarliestExpectedReturn returns the earliest expected return date among the open borrowings of a book,
// or nil when the book has none.
func (s Store) EarliestExpectedReturn(ctx context.Context, bookID uuid.UUID) (*core.Date, error) {
	sqlQuery, err := buildEarliestExpectedReturnQuery(bookID)
	if err != nil {
		return nil, s.buildFailed(err)
	}

	scanNullableDate := func(rows adapters.DBRows) (*core.Date, error) {
		var earliest sql.NullString
		if scanErr := rows.Scan(&earliest); scanErr != nil {
			return nil, errors.Join(store.ErrScanningDBRowFailed, scanErr)
		}

		if !earliest.Valid {
			return nil, nil
		}

		d, parseErr := core.ParseDate(earliest.String)
		if parseErr != nil {
			return nil, errors.Join(store.ErrScanningDBRowFailed, parseErr)
		}

		return &d, nil
	}

	return queryOne(ctx, s.reader(ctx), opEarliestExpectedReturn, sqlQuery, scanNullableDate, nil)
}

// PaymentByID reads a payment.
func (s Store) PaymentByID(ctx context.Context, paymentID uuid.UUID) (core.Payment, error) {
	sqlQuery, err := buildSelectPaymentQuery(paymentID)
	if err != nil {
		return core.Payment{}, s.buildFailed(err)
	}

	return queryOne(ctx, s.reader(ctx), opPaymentByID, sqlQuery, scanPayment, core.ErrPaymentNotFound)
}

// Payments lists payments matching filter, most recent first.
func (s Store) Payments(ctx context.Context, filter store.PaymentFilter) ([]core.Payment, error) {
	sqlQuery, err := buildSelectPaymentsQuery(filter)
	if err != nil {
		return nil, s.buildFailed(err)
	}

	return queryAll(ctx, s.reader(ctx), opPayments, sqlQuery, scanPayment)
}

// LinkChannel links, or relinks, a user to a notification channel.
func (s Store) LinkChannel(ctx context.Context, link store.ChannelLink) error {
	sqlQuery, err := buildUpsertChannelQuery(link)
	if err != nil {
		return s.buildFailed(err)
	}

	_, err = s.primary().exec(ctx, opLinkChannel, sqlQuery)

	return err
}

// ChannelOf returns the notification channel linked to a user, if any.
func (s Store) ChannelOf(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	sqlQuery, err := buildSelectChannelQuery(userID)
	if err != nil {
		return "", false, s.buildFailed(err)
	}

	scanChannelID := func(rows adapters.DBRows) (string, error) {
		var channelID string
		if scanErr := rows.Scan(&channelID); scanErr != nil {
			return "", errors.Join(store.ErrScanningDBRowFailed, scanErr)
		}

		return channelID, nil
	}

	channels, err := queryAll(ctx, s.reader(ctx), opChannelOf, sqlQuery, scanChannelID)
	if err != nil || len(channels) == 0 {
		return "", false, err
	}

	return channels[0], true, nil
}

// ChannelLinks lists every user with a linked notification channel.
func (s Store) ChannelLinks(ctx context.Context) ([]store.ChannelLink, error) {
	sqlQuery, err := buildSelectChannelsQuery()
	if err != nil {
		return nil, s.buildFailed(err)
	}

	return queryAll(ctx, s.reader(ctx), opChannelLinks, sqlQuery, scanChannelLink)
}

// primary returns a session that reads and writes on the primary database.
func (s Store) primary() session {
	return s.session(s.db, s.db.Query)
}

// reader returns a session whose reads honor the consistency level in ctx.
func (s Store) reader(ctx context.Context) session {
	if store.ConsistencyLevelOf(ctx) == store.EventualConsistency {
		return s.session(s.db, s.db.QueryReplica)
	}

	return s.primary()
}

func (s Store) session(querier adapters.Querier, read readFunc) session {
	return session{
		querier:          querier,
		read:             read,
		logger:           s.logger,
		metricsCollector: s.metricsCollector,
	}
}

func (s Store) buildFailed(err error) error {
	s.logError(logMsgBuildQueryFailed, err)
	return errors.Join(store.ErrBuildingQueryFailed, err)
}

func (s Store) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, logAttrError, err.Error())
	}
}

func (s Store) logWarn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, logAttrError, err.Error())
	}
}

// durationToMilliseconds converts a duration to milliseconds with sub-millisecond precision.
func durationToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
