package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

// failureDescriptions holds the span error description per failure status.
var failureDescriptions = map[string]string{
	shell.StatusError:               "Operation failed",
	shell.StatusCanceled:            "Operation canceled",
	shell.StatusTimeout:             "Operation timed out",
	shell.StatusConcurrencyConflict: "Concurrency conflict",
}

// TracingCollector starts and finishes spans on an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan returns a context carrying the new span.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, shell.SpanContext) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return ctx, &OTelSpanContext{span: span}
}

// FinishSpan ends spans started by this collector and ignores any other SpanContext.
func (t *TracingCollector) FinishSpan(spanCtx shell.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	s.span.SetAttributes(toAttributes(attrs)...)
	s.SetStatus(status)
	s.span.End()
}

var _ shell.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext is the shell.SpanContext of an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus marks failures as errors and success as ok.
// Idempotent and payment-required outcomes leave the code unset and are kept as an attribute.
func (s *OTelSpanContext) SetStatus(status string) {
	if description, failed := failureDescriptions[status]; failed {
		s.span.SetStatus(codes.Error, description)
		return
	}

	if status == shell.StatusSuccess {
		s.span.SetStatus(codes.Ok, "")
		return
	}

	s.AddAttribute(shell.LogAttrStatus, status)
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ shell.SpanContext = (*OTelSpanContext)(nil)
