package postgresengine

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	dialectPostgres = "postgres"

	tableBooks                = "books"
	tableBorrowings           = "borrowings"
	tablePayments             = "payments"
	tableNotificationChannels = "notification_channels"

	colID                 = "id"
	colTitle              = "title"
	colAuthor             = "author"
	colCover              = "cover"
	colInventory          = "inventory"
	colDailyFee           = "daily_fee"
	colBookID             = "book_id"
	colUserID             = "user_id"
	colBorrowDate         = "borrow_date"
	colExpectedReturnDate = "expected_return_date"
	colActualReturnDate   = "actual_return_date"
	colBorrowingID        = "borrowing_id"
	colType               = "type"
	colStatus             = "status"
	colSessionID          = "session_id"
	colSessionURL         = "session_url"
	colAmount             = "amount"
	colCreatedAt          = "created_at"
	colCompletedAt        = "completed_at"
	colChannelID          = "channel_id"
	colLinkedAt           = "linked_at"

	castText = "?::text"
)

var dialect = goqu.Dialect(dialectPostgres)

// asText selects a column cast to text, so uuid, date and numeric values scan the same way with every driver.
func asText(column string) exp.LiteralExpression {
	return goqu.L(castText, goqu.C(column))
}

func bookColumns() []any {
	return []any{asText(colID), colTitle, colAuthor, colCover, colInventory, asText(colDailyFee)}
}

func borrowingColumns() []any {
	return []any{
		asText(colID), asText(colBookID), asText(colUserID),
		asText(colBorrowDate), asText(colExpectedReturnDate), asText(colActualReturnDate),
	}
}

func paymentColumns() []any {
	return []any{
		asText(colID), asText(colBorrowingID), colType, colStatus,
		colSessionID, colSessionURL, asText(colAmount), colCreatedAt, colCompletedAt,
	}
}

func buildInsertBookQuery(book core.Book) (string, error) {
	sqlQuery, _, err := dialect.
		Insert(tableBooks).
		Rows(goqu.Record{
			colID:        book.ID.String(),
			colTitle:     book.Title,
			colAuthor:    book.Author,
			colCover:     string(book.Cover),
			colInventory: book.Inventory,
			colDailyFee:  book.DailyFee.String(),
		}).
		ToSQL()

	return sqlQuery, err
}

func buildSelectBookQuery(bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tableBooks).
		Select(bookColumns()...).
		Where(goqu.C(colID).Eq(bookID.String())).
		ToSQL()

	return sqlQuery, err
}

// buildReserveCopyQuery decrements the inventory only while it is positive.
func buildReserveCopyQuery(bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		Update(tableBooks).
		Set(goqu.Record{colInventory: goqu.L("? - 1", goqu.C(colInventory))}).
		Where(
			goqu.C(colID).Eq(bookID.String()),
			goqu.C(colInventory).Gt(0),
		).
		ToSQL()

	return sqlQuery, err
}

func buildReleaseCopyQuery(bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		Update(tableBooks).
		Set(goqu.Record{colInventory: goqu.L("? + 1", goqu.C(colInventory))}).
		Where(goqu.C(colID).Eq(bookID.String())).
		ToSQL()

	return sqlQuery, err
}

func buildBookExistsQuery(bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tableBooks).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colID).Eq(bookID.String())).
		ToSQL()

	return sqlQuery, err
}

func buildSelectBorrowingQuery(borrowingID uuid.UUID, forUpdate bool) (string, error) {
	query := dialect.
		From(tableBorrowings).
		Select(borrowingColumns()...).
		Where(goqu.C(colID).Eq(borrowingID.String()))

	if forUpdate {
		query = query.ForUpdate(exp.Wait)
	}

	sqlQuery, _, err := query.ToSQL()

	return sqlQuery, err
}

func buildSelectBorrowingsQuery(filter store.BorrowingFilter) (string, error) {
	query := dialect.
		From(tableBorrowings).
		Select(borrowingColumns()...).
		Order(goqu.C(colBorrowDate).Desc(), goqu.C(colCreatedAt).Desc())

	if filter.UserID != nil {
		query = query.Where(goqu.C(colUserID).Eq(filter.UserID.String()))
	}

	if filter.BookID != nil {
		query = query.Where(goqu.C(colBookID).Eq(filter.BookID.String()))
	}

	if filter.IsActive != nil {
		if *filter.IsActive {
			query = query.Where(goqu.C(colActualReturnDate).IsNull())
		} else {
			query = query.Where(goqu.C(colActualReturnDate).IsNotNull())
		}
	}

	if filter.OverdueOn != nil {
		query = query.Where(
			goqu.C(colActualReturnDate).IsNull(),
			goqu.C(colExpectedReturnDate).Lte(filter.OverdueOn.String()),
		)
	}

	sqlQuery, _, err := query.ToSQL()

	return sqlQuery, err
}

func buildHasActiveBorrowingQuery(userID uuid.UUID, bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tableBorrowings).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colUserID).Eq(userID.String()),
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colActualReturnDate).IsNull(),
		).
		ToSQL()

	return sqlQuery, err
}

func buildEarliestExpectedReturnQuery(bookID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tableBorrowings).
		Select(goqu.L("MIN(?)::text", goqu.C(colExpectedReturnDate))).
		Where(
			goqu.C(colBookID).Eq(bookID.String()),
			goqu.C(colActualReturnDate).IsNull(),
		).
		ToSQL()

	return sqlQuery, err
}

func buildInsertBorrowingQuery(borrowing core.Borrowing) (string, error) {
	record := goqu.Record{
		colID:                 borrowing.ID.String(),
		colBookID:             borrowing.BookID.String(),
		colUserID:             borrowing.UserID.String(),
		colBorrowDate:         borrowing.BorrowDate.String(),
		colExpectedReturnDate: borrowing.ExpectedReturnDate.String(),
	}

	if borrowing.ActualReturnDate != nil {
		record[colActualReturnDate] = borrowing.ActualReturnDate.String()
	}

	sqlQuery, _, err := dialect.Insert(tableBorrowings).Rows(record).ToSQL()

	return sqlQuery, err
}

// buildCloseBorrowingQuery sets the return date only while the borrowing is still open.
func buildCloseBorrowingQuery(borrowingID uuid.UUID, returnDate core.Date) (string, error) {
	sqlQuery, _, err := dialect.
		Update(tableBorrowings).
		Set(goqu.Record{colActualReturnDate: returnDate.String()}).
		Where(
			goqu.C(colID).Eq(borrowingID.String()),
			goqu.C(colActualReturnDate).IsNull(),
		).
		ToSQL()

	return sqlQuery, err
}

func buildSelectPaymentOfTypeQuery(borrowingID uuid.UUID, paymentType core.PaymentType) (string, error) {
	sqlQuery, _, err := dialect.
		From(tablePayments).
		Select(paymentColumns()...).
		Where(
			goqu.C(colBorrowingID).Eq(borrowingID.String()),
			goqu.C(colType).Eq(string(paymentType)),
		).
		ToSQL()

	return sqlQuery, err
}

func buildSelectPaymentQuery(paymentID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tablePayments).
		Select(paymentColumns()...).
		Where(goqu.C(colID).Eq(paymentID.String())).
		ToSQL()

	return sqlQuery, err
}

func buildLockPaymentBySessionQuery(sessionID string) (string, error) {
	sqlQuery, _, err := dialect.
		From(tablePayments).
		Select(paymentColumns()...).
		Where(goqu.C(colSessionID).Eq(sessionID)).
		ForUpdate(exp.Wait).
		ToSQL()

	return sqlQuery, err
}

func buildSelectPaymentsQuery(filter store.PaymentFilter) (string, error) {
	query := dialect.
		From(tablePayments).
		Select(paymentColumns()...).
		Order(goqu.C(colCreatedAt).Desc())

	if filter.BorrowingID != nil {
		query = query.Where(goqu.C(colBorrowingID).Eq(filter.BorrowingID.String()))
	}

	if filter.UserID != nil {
		ownBorrowings := dialect.
			From(tableBorrowings).
			Select(colID).
			Where(goqu.C(colUserID).Eq(filter.UserID.String()))

		query = query.Where(goqu.C(colBorrowingID).In(ownBorrowings))
	}

	sqlQuery, _, err := query.ToSQL()

	return sqlQuery, err
}

func buildInsertPaymentQuery(payment core.Payment) (string, error) {
	sqlQuery, _, err := dialect.
		Insert(tablePayments).
		Rows(goqu.Record{
			colID:          payment.ID.String(),
			colBorrowingID: payment.BorrowingID.String(),
			colType:        string(payment.Type),
			colStatus:      string(payment.Status),
			colSessionID:   payment.SessionID,
			colSessionURL:  payment.SessionURL,
			colAmount:      payment.Amount.String(),
			colCreatedAt:   payment.CreatedAt.UTC(),
		}).
		ToSQL()

	return sqlQuery, err
}

// buildReplaceSessionQuery swaps session and amount only while the payment is still pending on stale's session.
func buildReplaceSessionQuery(stale core.Payment, session core.CheckoutSession, amount decimal.Decimal) (string, error) {
	sqlQuery, _, err := dialect.
		Update(tablePayments).
		Set(goqu.Record{
			colSessionID:  session.ID,
			colSessionURL: session.URL,
			colAmount:     amount.String(),
		}).
		Where(
			goqu.C(colID).Eq(stale.ID.String()),
			goqu.C(colSessionID).Eq(stale.SessionID),
			goqu.C(colStatus).Eq(string(core.PaymentStatusPending)),
		).
		ToSQL()

	return sqlQuery, err
}

// buildCompletePaymentQuery flips the status only while the payment is still pending.
func buildCompletePaymentQuery(paymentID uuid.UUID, completedAt time.Time) (string, error) {
	sqlQuery, _, err := dialect.
		Update(tablePayments).
		Set(goqu.Record{
			colStatus:      string(core.PaymentStatusCompleted),
			colCompletedAt: completedAt.UTC(),
		}).
		Where(
			goqu.C(colID).Eq(paymentID.String()),
			goqu.C(colStatus).Eq(string(core.PaymentStatusPending)),
		).
		ToSQL()

	return sqlQuery, err
}

func buildUpsertChannelQuery(link store.ChannelLink) (string, error) {
	sqlQuery, _, err := dialect.
		Insert(tableNotificationChannels).
		Rows(goqu.Record{
			colUserID:    link.UserID.String(),
			colChannelID: link.ChannelID,
		}).
		OnConflict(goqu.DoUpdate(colUserID, goqu.Record{
			colChannelID: goqu.L("EXCLUDED.?", goqu.I(colChannelID)),
			colLinkedAt:  goqu.L("now()"),
		})).
		ToSQL()

	return sqlQuery, err
}

func buildSelectChannelQuery(userID uuid.UUID) (string, error) {
	sqlQuery, _, err := dialect.
		From(tableNotificationChannels).
		Select(colChannelID).
		Where(goqu.C(colUserID).Eq(userID.String())).
		ToSQL()

	return sqlQuery, err
}

func buildSelectChannelsQuery() (string, error) {
	sqlQuery, _, err := dialect.
		From(tableNotificationChannels).
		Select(asText(colUserID), colChannelID).
		Order(goqu.C(colUserID).Asc()).
		ToSQL()

	return sqlQuery, err
}
