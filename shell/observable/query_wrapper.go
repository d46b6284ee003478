package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

// instruments are the optional collaborators shared by both wrappers.
type instruments struct {
	metrics          shell.MetricsCollector
	tracing          shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// QueryWrapper adds metrics, tracing and logging around a query handler.
type QueryWrapper[Q shell.Query, R any] struct {
	coreHandler shell.QueryHandler[Q, R]
	queryType   string
	instruments
}

// NewQueryWrapper wraps coreHandler. Without options it only delegates.
func NewQueryWrapper[Q shell.Query, R any](
	coreHandler shell.QueryHandler[Q, R],
	opts ...QueryOption[Q, R],
) (*QueryWrapper[Q, R], error) {

	var query Q

	w := &QueryWrapper[Q, R]{coreHandler: coreHandler, queryType: query.QueryType()}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	ctx, span := shell.StartQuerySpan(ctx, w.tracing, w.queryType)
	shell.LogQueryStart(ctx, w.logger, w.contextualLogger, w.queryType)

	result, err := w.coreHandler.Handle(ctx, query)
	elapsed := time.Since(start)

	status := shell.StatusSuccess
	if err != nil {
		status = shell.FailureStatus(err)
	}

	shell.RecordQueryMetrics(ctx, w.metrics, w.queryType, status, elapsed)
	shell.FinishQuerySpan(w.tracing, span, status, elapsed, err)

	if err != nil {
		shell.LogQueryError(ctx, w.logger, w.contextualLogger, w.queryType, err)
		return result, err
	}

	shell.LogQuerySuccess(ctx, w.logger, w.contextualLogger, w.queryType, status, elapsed)

	return result, nil
}

// QueryOption configures a QueryWrapper.
type QueryOption[Q shell.Query, R any] func(*QueryWrapper[Q, R]) error

// WithQueryMetrics records durations and outcome counters on collector.
func WithQueryMetrics[Q shell.Query, R any](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.metrics = collector
		return nil
	}
}

// WithQueryTracing opens one span per Handle call.
func WithQueryTracing[Q shell.Query, R any](collector shell.TracingCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.tracing = collector
		return nil
	}
}

// WithQueryContextualLogging logs with the request context, which takes precedence over WithQueryLogging.
func WithQueryContextualLogging[Q shell.Query, R any](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithQueryLogging logs start, completion and failure.
func WithQueryLogging[Q shell.Query, R any](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.logger = logger
		return nil
	}
}
