package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/shell/oteladapters"
)

func newTracing() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter, provider
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter, _ := newTracing()

	// act
	_, span := collector.StartSpan(context.Background(), shell.SpanNameCommandHandle, map[string]string{"command_type": "ReturnBorrowing"})
	collector.FinishSpan(span, shell.StatusSuccess, map[string]string{"duration_ms": "1.50"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, shell.SpanNameCommandHandle, spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	commandType, _ := spanAttribute(spans[0], "command_type")
	assert.Equal(t, "ReturnBorrowing", commandType)

	duration, _ := spanAttribute(spans[0], "duration_ms")
	assert.Equal(t, "1.50", duration)
}

func Test_TracingCollector_FinishSpan_ErrorStatuses(t *testing.T) {
	for _, status := range []string{shell.StatusError, shell.StatusCanceled, shell.StatusTimeout, shell.StatusConcurrencyConflict} {
		t.Run(status, func(t *testing.T) {
			// arrange
			collector, exporter, _ := newTracing()
			_, span := collector.StartSpan(context.Background(), "op", nil)

			// act
			collector.FinishSpan(span, status, nil)

			// assert
			require.Len(t, exporter.GetSpans(), 1)
			assert.Equal(t, codes.Error, exporter.GetSpans()[0].Status.Code)
		})
	}
}

func Test_TracingCollector_FinishSpan_BusinessOutcomeIsAttribute(t *testing.T) {
	// arrange
	collector, exporter, _ := newTracing()
	_, span := collector.StartSpan(context.Background(), "op", nil)

	// act
	collector.FinishSpan(span, shell.StatusPaymentRequired, nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	status, found := spanAttribute(spans[0], shell.LogAttrStatus)
	assert.True(t, found)
	assert.Equal(t, shell.StatusPaymentRequired, status)
}

func Test_TraceCorrelatingLogger_AddsTraceIDs(t *testing.T) {
	// arrange
	collector, _, _ := newTracing()
	buf := &bytes.Buffer{}
	logger := oteladapters.NewTraceCorrelatingLogger(slog.New(slog.NewJSONHandler(buf, nil)))
	ctx, span := collector.StartSpan(context.Background(), "op", nil)
	defer collector.FinishSpan(span, shell.StatusSuccess, nil)

	// act
	logger.InfoContext(ctx, "borrowing created", "borrowing_id", "b-1")
	logger.InfoContext(context.Background(), "no span")

	// assert
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"trace_id"`)
	assert.Contains(t, string(lines[0]), `"borrowing_id":"b-1"`)
	assert.NotContains(t, string(lines[1]), `"trace_id"`)
}
