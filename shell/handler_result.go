package shell

import "time"

// HandlerResult is the execution metadata every command result carries next to its payload.
// An idempotent outcome is a success that changed nothing, never an error.
type HandlerResult struct {
	Idempotent bool

	// RetryAttempts is 1 when the first transaction committed.
	RetryAttempts   int
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType    string
	RetriesExhausted bool
}

// Metadata lets the observable wrappers read any result that embeds HandlerResult.
func (r HandlerResult) Metadata() HandlerResult {
	return r
}

// NewSuccessResult reports a state change made after the given retries.
func NewSuccessResult(m RetryMetrics) HandlerResult {
	return resultOf(m, false)
}

// NewIdempotentResult reports that the requested state was already in place.
func NewIdempotentResult(m RetryMetrics) HandlerResult {
	return resultOf(m, true)
}

// NewErrorResult keeps the retry metadata of a failed command.
func NewErrorResult(m RetryMetrics) HandlerResult {
	return resultOf(m, false)
}

func resultOf(m RetryMetrics, idempotent bool) HandlerResult {
	r := HandlerResult{Idempotent: idempotent}
	r.RetryAttempts, r.TotalRetryDelay = m.Attempts, m.TotalDelay
	r.LastErrorType, r.RetriesExhausted = m.LastErrorType, m.RetriesExhausted

	return r
}
