package observable_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/shell/observable"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type stubQueryHandler struct {
	err error
}

func (h stubQueryHandler) Handle(_ context.Context, _ testQuery) ([]string, error) {
	if h.err != nil {
		return nil, h.err
	}

	return []string{"a", "b"}, nil
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()

	wrapper, err := observable.NewQueryWrapper[testQuery, []string](
		stubQueryHandler{},
		observable.WithQueryMetrics[testQuery, []string](metrics),
		observable.WithQueryTracing[testQuery, []string](tracing),
		observable.WithQueryLogging[testQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result)
	assert.True(t, metrics.HasCounter(shell.QueryHandlerCallsMetric, shell.BuildQueryLabels("TestQuery", shell.StatusSuccess)))
	assert.True(t, metrics.HasDuration(shell.QueryHandlerDurationMetric, shell.BuildQueryLabels("TestQuery", shell.StatusSuccess)))
	require.Len(t, tracing.Spans(), 1)
	assert.Equal(t, shell.SpanNameQueryHandle, tracing.Spans()[0].Name)
	assert.True(t, logger.HasInfoLog(shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Timeout(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewLoggerSpy()

	wrapper, err := observable.NewQueryWrapper[testQuery, []string](
		stubQueryHandler{err: context.DeadlineExceeded},
		observable.WithQueryMetrics[testQuery, []string](metrics),
		observable.WithQueryContextualLogging[testQuery, []string](logger),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// act
	_, err = wrapper.Handle(ctx, testQuery{})

	// assert
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, metrics.HasCounter(shell.QueryHandlerTimeoutMetric, shell.BuildQueryLabels("TestQuery", shell.StatusTimeout)))
	assert.True(t, logger.HasErrorLog(shell.LogMsgQueryFailed))
}
