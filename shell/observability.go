package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Command handler metrics.
const (
	// CommandHandlerDurationMetric tracks command handler execution duration (OpenTelemetry-compatible).
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls, labeled by command_type and status.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	CommandHandlerIdempotentMetric          = "commandhandler_idempotent_operations_total"
	CommandHandlerPaymentRequiredMetric     = "commandhandler_payment_required_total"
	CommandHandlerCanceledMetric            = "commandhandler_canceled_operations_total"
	CommandHandlerTimeoutMetric             = "commandhandler_timeout_operations_total"
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// CommandHandlerRetriesMetric counts retry attempts, labeled by command_type, attempt_number and error_type.
	// Only concurrency conflicts are retried, so the series count stays at commands x max attempts.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric records the backoff delay before each retry.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts commands that gave up after the last attempt.
	// Any increase means a book or payment row is contended harder than the backoff can absorb.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"
)

// Query handler metrics.
const (
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric    = "queryhandler_handle_calls_total"
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"
	QueryHandlerTimeoutMetric  = "queryhandler_timeout_operations_total"
)

// EventsPublishedMetric tracks domain events handed to the notification transport.
const EventsPublishedMetric = "events_published_total"

// Outcome statuses used as metric labels, span status and log attribute.
const (
	StatusSuccess             = "success"
	StatusError               = "error"
	StatusIdempotent          = "idempotent"
	StatusPaymentRequired     = "payment_required"
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"
)

// Log messages.
const (
	LogMsgEventPublishFailed = "event publishing failed"
	LogMsgCommandStarted     = "command handler started"
	LogMsgCommandCompleted   = "command handler completed"
	LogMsgCommandFailed      = "command handler failed"
	LogMsgQueryStarted       = "query handler started"
	LogMsgQueryCompleted     = "query handler completed"
	LogMsgQueryFailed        = "query handler failed"
)

// Log and label attribute keys.
const (
	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrEventType       = "event_type"
	LogAttrError           = "error"
	LogAttrReason          = "reason"
	LogAttrOperation       = "operation"
	LogAttrEventCount      = "event_count"

	labelAttemptNumber = "attempt_number"
	labelErrorType     = "error_type"
)

// Span names.
const (
	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// The shell uses the store's observability contracts, so one collector serves both layers.
type (
	MetricsCollector           = store.MetricsCollector
	ContextualMetricsCollector = store.ContextualMetricsCollector
	TracingCollector           = store.TracingCollector
	SpanContext                = store.SpanContext
	ContextualLogger           = store.ContextualLogger
	Logger                     = store.Logger
)

// handlerKind holds what differs between command and query instrumentation.
type handlerKind struct {
	typeAttr       string
	durationMetric string
	callsMetric    string
	spanName       string
	msgStarted     string
	msgCompleted   string
	msgFailed      string

	// outcomeCounters maps a status to the extra counter it increments next to the calls counter.
	outcomeCounters map[string]string
}

var commandKind = handlerKind{
	typeAttr:       LogAttrCommandType,
	durationMetric: CommandHandlerDurationMetric,
	callsMetric:    CommandHandlerCallsMetric,
	spanName:       SpanNameCommandHandle,
	msgStarted:     LogMsgCommandStarted,
	msgCompleted:   LogMsgCommandCompleted,
	msgFailed:      LogMsgCommandFailed,
	outcomeCounters: map[string]string{
		StatusIdempotent:          CommandHandlerIdempotentMetric,
		StatusPaymentRequired:     CommandHandlerPaymentRequiredMetric,
		StatusCanceled:            CommandHandlerCanceledMetric,
		StatusTimeout:             CommandHandlerTimeoutMetric,
		StatusConcurrencyConflict: CommandHandlerConcurrencyConflictMetric,
	},
}

var queryKind = handlerKind{
	typeAttr:       LogAttrQueryType,
	durationMetric: QueryHandlerDurationMetric,
	callsMetric:    QueryHandlerCallsMetric,
	spanName:       SpanNameQueryHandle,
	msgStarted:     LogMsgQueryStarted,
	msgCompleted:   LogMsgQueryCompleted,
	msgFailed:      LogMsgQueryFailed,
	outcomeCounters: map[string]string{
		StatusCanceled: QueryHandlerCanceledMetric,
		StatusTimeout:  QueryHandlerTimeoutMetric,
	},
}

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return commandKind.labels(commandType, status)
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return queryKind.labels(queryType, status)
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		labelAttemptNumber: strconv.Itoa(attemptNumber),
		labelErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records duration and calls of a command, plus the outcome counter for its status.
func RecordCommandMetrics(ctx context.Context, collector MetricsCollector, commandType, status string, duration time.Duration) {
	commandKind.record(ctx, collector, commandType, status, duration)
}

// RecordQueryMetrics records duration and calls of a query, plus the outcome counter for its status.
func RecordQueryMetrics(ctx context.Context, collector MetricsCollector, queryType, status string, duration time.Duration) {
	queryKind.record(ctx, collector, queryType, status, duration)
}

// StartCommandSpan starts a span for a command. Without a collector it returns ctx and a nil span.
func StartCommandSpan(ctx context.Context, collector TracingCollector, commandType string) (context.Context, SpanContext) {
	return commandKind.startSpan(ctx, collector, commandType)
}

// FinishCommandSpan completes a command span with the operation outcome.
func FinishCommandSpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	finishSpan(collector, span, status, duration, err)
}

// StartQuerySpan starts a span for a query. Without a collector it returns ctx and a nil span.
func StartQuerySpan(ctx context.Context, collector TracingCollector, queryType string) (context.Context, SpanContext) {
	return queryKind.startSpan(ctx, collector, queryType)
}

// FinishQuerySpan completes a query span with the operation outcome.
func FinishQuerySpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	finishSpan(collector, span, status, duration, err)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	logInfo(ctx, logger, contextualLogger, commandKind.msgStarted, commandKind.typeAttr, commandType)
}

// LogCommandSuccess logs successful command completion.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	businessOutcome string,
	duration time.Duration,
) {
	commandKind.logSuccess(ctx, logger, contextualLogger, commandType, businessOutcome, duration)
}

// LogCommandError logs command processing errors.
func LogCommandError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string, err error) {
	commandKind.logError(ctx, logger, contextualLogger, commandType, err)
}

// LogQueryStart logs the beginning of query processing.
func LogQueryStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string) {
	logInfo(ctx, logger, contextualLogger, queryKind.msgStarted, queryKind.typeAttr, queryType)
}

// LogQuerySuccess logs successful query completion.
func LogQuerySuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	businessOutcome string,
	duration time.Duration,
) {
	queryKind.logSuccess(ctx, logger, contextualLogger, queryType, businessOutcome, duration)
}

// LogQueryError logs query processing errors.
func LogQueryError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, queryType string, err error) {
	queryKind.logError(ctx, logger, contextualLogger, queryType, err)
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is a lost race on a book, borrowing or payment row.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, store.ErrConcurrencyConflict)
}

// FailureStatus maps a handler error to the status it is recorded under.
func FailureStatus(err error) string {
	switch {
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

// RecordRetryOutcome records the retries and the give-up of a command from its result metadata.
func RecordRetryOutcome(ctx context.Context, collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil {
		return
	}

	commandLabels := map[string]string{LogAttrCommandType: commandType}

	if result.RetryAttempts > 1 {
		incrementCounter(ctx, collector, CommandHandlerRetriesMetric,
			BuildRetryLabels(commandType, result.RetryAttempts-1, result.LastErrorType))
		recordDuration(ctx, collector, CommandHandlerRetryDelayMetric, result.TotalRetryDelay, commandLabels)
	}

	if result.RetriesExhausted {
		incrementCounter(ctx, collector, CommandHandlerMaxRetriesReachedMetric, commandLabels)
	}
}

func (k handlerKind) labels(handlerType, status string) map[string]string {
	return map[string]string{
		k.typeAttr:    handlerType,
		LogAttrStatus: status,
	}
}

func (k handlerKind) record(ctx context.Context, collector MetricsCollector, handlerType, status string, duration time.Duration) {
	if collector == nil {
		return
	}

	labels := k.labels(handlerType, status)
	recordDuration(ctx, collector, k.durationMetric, duration, labels)
	incrementCounter(ctx, collector, k.callsMetric, labels)

	if metric, ok := k.outcomeCounters[status]; ok {
		incrementCounter(ctx, collector, metric, labels)
	}
}

func (k handlerKind) startSpan(ctx context.Context, collector TracingCollector, handlerType string) (context.Context, SpanContext) {
	if collector == nil {
		return ctx, nil
	}

	return collector.StartSpan(ctx, k.spanName, map[string]string{k.typeAttr: handlerType})
}

func (k handlerKind) logSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	handlerType string,
	businessOutcome string,
	duration time.Duration,
) {
	logInfo(ctx, logger, contextualLogger, k.msgCompleted,
		k.typeAttr, handlerType,
		LogAttrBusinessOutcome, businessOutcome,
		LogAttrDurationMS, ToMilliseconds(duration),
	)
}

func (k handlerKind) logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, handlerType string, err error) {
	args := []any{k.typeAttr, handlerType, LogAttrError, err.Error()}

	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, k.msgFailed, args...)
	} else if logger != nil {
		logger.Error(k.msgFailed, args...)
	}
}

func finishSpan(collector TracingCollector, span SpanContext, status string, duration time.Duration, err error) {
	if collector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	collector.FinishSpan(span, status, attrs)
}

func logInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, duration time.Duration, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}
