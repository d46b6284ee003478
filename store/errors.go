package store

import (
	"errors"
)

var (
	// ErrConcurrencyConflict is returned when a conditional write found the row changed underneath it,
	// or the database aborted the transaction with a deadlock or serialization failure. It is retryable.
	ErrConcurrencyConflict = errors.New("concurrency conflict, no rows were affected")

	// ErrDuplicatePayment is returned when a borrowing already has a payment of the same type.
	ErrDuplicatePayment = errors.New("borrowing already has a payment of this type")

	// ErrNilDatabaseConnection is returned when an engine is constructed without a connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrQueryingFailed is returned when a select statement fails.
	ErrQueryingFailed = errors.New("querying failed")

	// ErrWritingFailed is returned when an insert or update statement fails.
	ErrWritingFailed = errors.New("writing failed")

	// ErrScanningDBRowFailed is returned when a database row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrBuildingQueryFailed is returned when a SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrTransactionFailed is returned when a transaction cannot be started or committed.
	ErrTransactionFailed = errors.New("transaction failed")
)
