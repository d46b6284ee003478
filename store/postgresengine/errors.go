package postgresengine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	constraintOneActiveBorrowing      = "borrowings_one_active_per_user_book"
	constraintOnePaymentPerType       = "payments_one_per_type_per_borrowing"
	constraintExpectedNotBeforeBorrow = "borrowings_expected_not_before_borrow"
	constraintActualNotBeforeBorrow   = "borrowings_actual_not_before_borrow"
	constraintInventoryNonNegative    = "books_inventory_non_negative"
	constraintDailyFeePositive        = "books_daily_fee_positive"
	constraintAmountPositive          = "payments_amount_positive"
	constraintBorrowingBookFK         = "borrowings_book_id_fkey"
	constraintPaymentBorrowingFK      = "payments_borrowing_id_fkey"
)

// pgErrorDetails extracts the SQLSTATE code and constraint name from a pgx or lib/pq error.
func pgErrorDetails(err error) (code string, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}

	return "", "", false
}

// translateError maps driver errors for business rules to core sentinels and
// transaction aborts to store.ErrConcurrencyConflict. Anything else is joined with fallback.
func translateError(err error, fallback error) error {
	code, constraint, ok := pgErrorDetails(err)
	if !ok {
		return errors.Join(fallback, err)
	}

	switch code {
	case pgSerializationFailure, pgDeadlockDetected:
		return errors.Join(store.ErrConcurrencyConflict, err)

	case pgUniqueViolation:
		switch constraint {
		case constraintOneActiveBorrowing:
			return errors.Join(core.ErrDuplicateActiveBorrowing, err)
		case constraintOnePaymentPerType:
			return errors.Join(store.ErrDuplicatePayment, err)
		}

	case pgCheckViolation:
		switch constraint {
		case constraintExpectedNotBeforeBorrow, constraintActualNotBeforeBorrow:
			return errors.Join(core.ErrInvalidDateRange, err)
		case constraintInventoryNonNegative:
			return errors.Join(core.ErrInvalidInventory, err)
		case constraintDailyFeePositive, constraintAmountPositive:
			return errors.Join(core.ErrInvalidAmount, err)
		}

	case pgForeignKeyViolation:
		switch constraint {
		case constraintBorrowingBookFK:
			return errors.Join(core.ErrBookNotFound, err)
		case constraintPaymentBorrowingFK:
			return errors.Join(core.ErrBorrowingNotFound, err)
		}
	}

	return errors.Join(fallback, err)
}
