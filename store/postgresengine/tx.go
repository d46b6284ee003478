package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine/internal/adapters"
)

// pgTx implements store.Tx on top of an open database transaction.
type pgTx struct {
	session session
}

func (t pgTx) ReserveCopy(ctx context.Context, bookID uuid.UUID) error {
	sqlQuery, err := buildReserveCopyQuery(bookID)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	rowsAffected, err := t.session.exec(ctx, opReserveCopy, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	exists, err := t.bookExists(ctx, bookID)
	if err != nil {
		return err
	}

	if !exists {
		return core.ErrBookNotFound
	}

	return core.ErrOutOfStock
}

func (t pgTx) ReleaseCopy(ctx context.Context, bookID uuid.UUID) error {
	sqlQuery, err := buildReleaseCopyQuery(bookID)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	rowsAffected, err := t.session.exec(ctx, opReleaseCopy, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return core.ErrBookNotFound
	}

	return nil
}

func (t pgTx) BookByID(ctx context.Context, bookID uuid.UUID) (core.Book, error) {
	return selectBook(ctx, t.session, bookID)
}

func (t pgTx) LockBorrowing(ctx context.Context, borrowingID uuid.UUID) (core.Borrowing, error) {
	sqlQuery, err := buildSelectBorrowingQuery(borrowingID, true)
	if err != nil {
		return core.Borrowing{}, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	return queryOne(ctx, t.session, opLockBorrowing, sqlQuery, scanBorrowing, core.ErrBorrowingNotFound)
}

func (t pgTx) HasActiveBorrowing(ctx context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error) {
	sqlQuery, err := buildHasActiveBorrowingQuery(userID, bookID)
	if err != nil {
		return false, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	count, err := queryOne(ctx, t.session, opHasActiveBorrowing, sqlQuery, scanCount, nil)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (t pgTx) InsertBorrowing(ctx context.Context, borrowing core.Borrowing) error {
	sqlQuery, err := buildInsertBorrowingQuery(borrowing)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	_, err = t.session.exec(ctx, opInsertBorrowing, sqlQuery)

	return err
}

func (t pgTx) CloseBorrowing(ctx context.Context, borrowingID uuid.UUID, returnDate core.Date) error {
	sqlQuery, err := buildCloseBorrowingQuery(borrowingID, returnDate)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	rowsAffected, err := t.session.exec(ctx, opCloseBorrowing, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return t.session.conflict(opCloseBorrowing)
	}

	return nil
}

func (t pgTx) PaymentOfType(
	ctx context.Context,
	borrowingID uuid.UUID,
	paymentType core.PaymentType,
) (core.Payment, bool, error) {

	sqlQuery, err := buildSelectPaymentOfTypeQuery(borrowingID, paymentType)
	if err != nil {
		return core.Payment{}, false, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	payments, err := queryAll(ctx, t.session, opPaymentOfType, sqlQuery, scanPayment)
	if err != nil || len(payments) == 0 {
		return core.Payment{}, false, err
	}

	return payments[0], true, nil
}

func (t pgTx) InsertPayment(ctx context.Context, payment core.Payment) error {
	sqlQuery, err := buildInsertPaymentQuery(payment)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	_, err = t.session.exec(ctx, opInsertPayment, sqlQuery)

	return err
}

func (t pgTx) ReplacePendingSession(
	ctx context.Context,
	stale core.Payment,
	session core.CheckoutSession,
	amount decimal.Decimal,
) error {

	sqlQuery, err := buildReplaceSessionQuery(stale, session, amount)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	rowsAffected, err := t.session.exec(ctx, opReplacePendingSession, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return t.session.conflict(opReplacePendingSession)
	}

	return nil
}

func (t pgTx) LockPaymentBySessionID(ctx context.Context, sessionID string) (core.Payment, error) {
	sqlQuery, err := buildLockPaymentBySessionQuery(sessionID)
	if err != nil {
		return core.Payment{}, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	return queryOne(ctx, t.session, opLockPaymentBySessionID, sqlQuery, scanPayment, core.ErrPaymentNotFound)
}

func (t pgTx) MarkPaymentCompleted(ctx context.Context, paymentID uuid.UUID, completedAt time.Time) error {
	sqlQuery, err := buildCompletePaymentQuery(paymentID, completedAt)
	if err != nil {
		return errors.Join(store.ErrBuildingQueryFailed, err)
	}

	rowsAffected, err := t.session.exec(ctx, opMarkPaymentCompleted, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return t.session.conflict(opMarkPaymentCompleted)
	}

	return nil
}

func (t pgTx) bookExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	sqlQuery, err := buildBookExistsQuery(bookID)
	if err != nil {
		return false, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	count, err := queryOne(ctx, t.session, opBookExists, sqlQuery, scanCount, nil)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func selectBook(ctx context.Context, s session, bookID uuid.UUID) (core.Book, error) {
	sqlQuery, err := buildSelectBookQuery(bookID)
	if err != nil {
		return core.Book{}, errors.Join(store.ErrBuildingQueryFailed, err)
	}

	return queryOne(ctx, s, opBookByID, sqlQuery, scanBook, core.ErrBookNotFound)
}

func scanCount(rows adapters.DBRows) (int64, error) {
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, errors.Join(store.ErrScanningDBRowFailed, err)
	}

	return count, nil
}
