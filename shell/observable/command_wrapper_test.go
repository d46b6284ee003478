package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/shell/observable"
	"github.com/AntonStoeckl/library-rentals-go/store"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type testResult struct {
	shell.HandlerResult
	PaymentRequired bool
}

func (r testResult) IsPaymentRequired() bool { return r.PaymentRequired }

type stubCommandHandler struct {
	result testResult
	err    error
	calls  int
}

func (h *stubCommandHandler) Handle(_ context.Context, _ testCommand) (testResult, error) {
	h.calls++
	return h.result, h.err
}

func newWrapper(
	t *testing.T,
	handler *stubCommandHandler,
	metrics *testdoubles.MetricsCollectorSpy,
	tracing *testdoubles.TracingCollectorSpy,
	logger *testdoubles.LoggerSpy,
) *observable.CommandWrapper[testCommand, testResult] {

	wrapper, err := observable.NewCommandWrapper[testCommand, testResult](
		handler,
		observable.WithCommandMetrics[testCommand, testResult](metrics),
		observable.WithCommandTracing[testCommand, testResult](tracing),
		observable.WithCommandContextualLogging[testCommand, testResult](logger),
	)
	require.NoError(t, err)

	return wrapper
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: testResult{HandlerResult: shell.HandlerResult{RetryAttempts: 1, LastErrorType: "none"}}}
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()
	wrapper := newWrapper(t, handler, metrics, tracing, logger)

	// act
	result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, handler.result, result)
	assert.Equal(t, 1, handler.calls)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric, shell.BuildCommandLabels("TestCommand", shell.StatusSuccess)))
	assert.True(t, metrics.HasDuration(shell.CommandHandlerDurationMetric, shell.BuildCommandLabels("TestCommand", shell.StatusSuccess)))
	assert.Zero(t, metrics.CounterCount(shell.CommandHandlerRetriesMetric))
	require.Len(t, tracing.Spans(), 1)
	assert.Equal(t, shell.SpanNameCommandHandle, tracing.Spans()[0].Name)
	assert.Equal(t, shell.StatusSuccess, tracing.Spans()[0].Status())
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandStarted))
	assert.True(t, logger.HasInfoLog(shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_Idempotent(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: testResult{HandlerResult: shell.HandlerResult{Idempotent: true, RetryAttempts: 1}}}
	metrics := testdoubles.NewMetricsCollectorSpy()
	wrapper := newWrapper(t, handler, metrics, testdoubles.NewTracingCollectorSpy(), testdoubles.NewLoggerSpy())

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerIdempotentMetric, shell.BuildCommandLabels("TestCommand", shell.StatusIdempotent)))
}

func Test_CommandWrapper_Handle_PaymentRequired(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: testResult{HandlerResult: shell.HandlerResult{RetryAttempts: 1}, PaymentRequired: true}}
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	wrapper := newWrapper(t, handler, metrics, tracing, testdoubles.NewLoggerSpy())

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric, shell.BuildCommandLabels("TestCommand", shell.StatusPaymentRequired)))
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerPaymentRequiredMetric))
	assert.Equal(t, shell.StatusPaymentRequired, tracing.Spans()[0].Status())
}

func Test_CommandWrapper_Handle_ConcurrencyConflictAfterRetries(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{
		result: testResult{HandlerResult: shell.HandlerResult{
			RetryAttempts:    6,
			LastErrorType:    "concurrency_conflict",
			RetriesExhausted: true,
		}},
		err: errors.Join(store.ErrConcurrencyConflict, errors.New("deadlock")),
	}
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()
	wrapper := newWrapper(t, handler, metrics, tracing, logger)

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.ErrorIs(t, err, store.ErrConcurrencyConflict)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerConcurrencyConflictMetric, shell.BuildCommandLabels("TestCommand", shell.StatusConcurrencyConflict)))
	assert.True(t, metrics.HasCounter(shell.CommandHandlerRetriesMetric, shell.BuildRetryLabels("TestCommand", 5, "concurrency_conflict")))
	assert.Equal(t, 1, metrics.CounterCount(shell.CommandHandlerMaxRetriesReachedMetric))
	assert.Equal(t, shell.StatusConcurrencyConflict, tracing.Spans()[0].Status())
	assert.Contains(t, tracing.Spans()[0].Attributes(), shell.LogAttrError)
	assert.True(t, logger.HasErrorLog(shell.LogMsgCommandFailed))
}

func Test_CommandWrapper_Handle_Canceled(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{err: context.Canceled}
	metrics := testdoubles.NewMetricsCollectorSpy()
	wrapper := newWrapper(t, handler, metrics, testdoubles.NewTracingCollectorSpy(), testdoubles.NewLoggerSpy())

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCanceledMetric, nil))
}

func Test_CommandWrapper_Handle_WithoutObservability(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{err: errors.New("boom")}
	wrapper, err := observable.NewCommandWrapper[testCommand, testResult](handler)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, handler.calls)
}
