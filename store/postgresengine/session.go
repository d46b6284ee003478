package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/store/postgresengine/internal/adapters"
)

type readFunc func(ctx context.Context, query string) (adapters.DBRows, error)

// session executes statements on one connection scope, the pool or an open transaction,
// and takes care of logging, metrics and driver error translation.
type session struct {
	querier          adapters.Querier
	read             readFunc
	logger           Logger
	metricsCollector store.MetricsCollector
}

// queryAll runs a select statement and scans every returned row.
func queryAll[T any](
	ctx context.Context,
	s session,
	operation string,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
) ([]T, error) {

	start := time.Now()
	rows, err := s.read(ctx, sqlQuery)
	if err != nil {
		s.observe(operation, sqlQuery, start, err)
		s.logError(logMsgDBQueryFailed, operation, err)

		return nil, translateError(err, store.ErrQueryingFailed)
	}
	defer s.closeRows(rows)

	var result []T
	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			s.observe(operation, sqlQuery, start, scanErr)
			return nil, scanErr
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.observe(operation, sqlQuery, start, rowsErr)
		s.logError(logMsgDBQueryFailed, operation, rowsErr)

		return nil, translateError(rowsErr, store.ErrQueryingFailed)
	}

	s.observe(operation, sqlQuery, start, nil)

	return result, nil
}

// queryOne runs a select statement that yields at most one row.
// Without a row it fails with notFound, or returns the zero value when notFound is nil.
func queryOne[T any](
	ctx context.Context,
	s session,
	operation string,
	sqlQuery string,
	scan func(adapters.DBRows) (T, error),
	notFound error,
) (T, error) {

	var zero T

	items, err := queryAll(ctx, s, operation, sqlQuery, scan)
	if err != nil {
		return zero, err
	}

	if len(items) == 0 {
		return zero, notFound
	}

	return items[0], nil
}

// exec runs an insert or update statement and returns the number of affected rows.
func (s session) exec(ctx context.Context, operation string, sqlQuery string) (int64, error) {
	start := time.Now()

	result, err := s.querier.Exec(ctx, sqlQuery)
	if err != nil {
		s.observe(operation, sqlQuery, start, err)
		translated := translateError(err, store.ErrWritingFailed)

		if errors.Is(translated, store.ErrWritingFailed) {
			s.logError(logMsgDBExecFailed, operation, err)
		}

		return 0, translated
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.observe(operation, sqlQuery, start, err)
		s.logError(logMsgRowsAffectedFailed, operation, err)

		return 0, errors.Join(store.ErrWritingFailed, err)
	}

	s.observe(operation, sqlQuery, start, nil)

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, logAttrRowsAffected, rowsAffected)
	}

	return rowsAffected, nil
}

// conflict records and logs a conditional write that affected no rows.
func (s session) conflict(operation string) error {
	if s.logger != nil {
		s.logger.Info(logMsgConcurrencyConflict, logAttrOperation, operation)
	}

	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(metricStoreConflicts, map[string]string{logAttrOperation: operation})
	}

	return store.ErrConcurrencyConflict
}

func (s session) observe(operation string, sqlQuery string, start time.Time, err error) {
	duration := time.Since(start)

	if s.logger != nil {
		s.logger.Debug(
			logMsgSQLExecuted+operation,
			logAttrQuery, sqlQuery,
			logAttrDurationMS, durationToMilliseconds(duration),
		)
	}

	if s.metricsCollector == nil {
		return
	}

	status := statusSuccess
	if err != nil {
		status = statusError
	}

	s.metricsCollector.RecordDuration(
		metricStoreOperationDur,
		duration,
		map[string]string{logAttrOperation: operation, "status": status},
	)
}

func (s session) closeRows(rows adapters.DBRows) {
	if err := rows.Close(); err != nil && s.logger != nil {
		s.logger.Warn(logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (s session) logError(msg string, operation string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, logAttrOperation, operation, logAttrError, err.Error())
	}
}
