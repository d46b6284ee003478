package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	logAttrTraceID = "trace_id"
	logAttrSpanID  = "span_id"
)

// TraceCorrelatingLogger implements shell.ContextualLogger on top of *slog.Logger.
// Records logged with a context that carries a recording span get its trace and span id attached.
type TraceCorrelatingLogger struct {
	logger *slog.Logger
}

// NewTraceCorrelatingLogger creates a new contextual logger writing to logger.
func NewTraceCorrelatingLogger(logger *slog.Logger) *TraceCorrelatingLogger {
	return &TraceCorrelatingLogger{logger: logger}
}

// DebugContext logs a debug message with context.
func (l *TraceCorrelatingLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, withTraceIDs(ctx, args)...)
}

// InfoContext logs an info message with context.
func (l *TraceCorrelatingLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, withTraceIDs(ctx, args)...)
}

// WarnContext logs a warning message with context.
func (l *TraceCorrelatingLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, withTraceIDs(ctx, args)...)
}

// ErrorContext logs an error message with context.
func (l *TraceCorrelatingLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, withTraceIDs(ctx, args)...)
}

func withTraceIDs(ctx context.Context, args []any) []any {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return args
	}

	return append(args, logAttrTraceID, spanCtx.TraceID().String(), logAttrSpanID, spanCtx.SpanID().String())
}

var _ shell.ContextualLogger = (*TraceCorrelatingLogger)(nil)
