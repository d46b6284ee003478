package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

// paymentRequiredResult is implemented by results that can stop short of a state change until a payment is made.
type paymentRequiredResult interface {
	IsPaymentRequired() bool
}

// CommandWrapper adds metrics, tracing and logging around a core command handler.
// The business outcome comes from the result's Metadata, the failure status from the error.
type CommandWrapper[C shell.Command, R shell.CommandResult] struct {
	coreHandler shell.CoreCommandHandler[C, R]
	commandType string
	instruments
}

// NewCommandWrapper wraps coreHandler. Without options it only delegates.
func NewCommandWrapper[C shell.Command, R shell.CommandResult](
	coreHandler shell.CoreCommandHandler[C, R],
	opts ...CommandOption[C, R],
) (*CommandWrapper[C, R], error) {

	var command C

	w := &CommandWrapper[C, R]{coreHandler: coreHandler, commandType: command.CommandType()}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle delegates to the core handler and records the outcome.
func (w *CommandWrapper[C, R]) Handle(ctx context.Context, command C) (R, error) {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracing, w.commandType)
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)
	elapsed := time.Since(start)

	shell.RecordRetryOutcome(ctx, w.metrics, w.commandType, result.Metadata())

	status := businessOutcome(result)
	if err != nil {
		status = shell.FailureStatus(err)
	}

	shell.RecordCommandMetrics(ctx, w.metrics, w.commandType, status, elapsed)
	shell.FinishCommandSpan(w.tracing, span, status, elapsed, err)

	if err != nil {
		shell.LogCommandError(ctx, w.logger, w.contextualLogger, w.commandType, err)
		return result, err
	}

	shell.LogCommandSuccess(ctx, w.logger, w.contextualLogger, w.commandType, status, elapsed)

	return result, nil
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command, R shell.CommandResult] func(*CommandWrapper[C, R]) error

// WithCommandMetrics records durations and outcome counters on collector.
func WithCommandMetrics[C shell.Command, R shell.CommandResult](collector shell.MetricsCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.metrics = collector
		return nil
	}
}

// WithCommandTracing opens one span per Handle call.
func WithCommandTracing[C shell.Command, R shell.CommandResult](collector shell.TracingCollector) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.tracing = collector
		return nil
	}
}

// WithCommandContextualLogging logs with the request context, which takes precedence over WithCommandLogging.
func WithCommandContextualLogging[C shell.Command, R shell.CommandResult](logger shell.ContextualLogger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithCommandLogging logs start, completion and failure.
func WithCommandLogging[C shell.Command, R shell.CommandResult](logger shell.Logger) CommandOption[C, R] {
	return func(w *CommandWrapper[C, R]) error {
		w.logger = logger
		return nil
	}
}

func businessOutcome(result shell.CommandResult) string {
	if result.Metadata().Idempotent {
		return shell.StatusIdempotent
	}

	if pr, ok := result.(paymentRequiredResult); ok && pr.IsPaymentRequired() {
		return shell.StatusPaymentRequired
	}

	return shell.StatusSuccess
}
