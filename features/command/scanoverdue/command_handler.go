package scanoverdue

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	// OverdueBorrowingsMetric is the number of overdue borrowings found by the last scan.
	OverdueBorrowingsMetric = "overdue_borrowings"

	logMsgNoChannel    = "overdue borrowing skipped, owner has no notification channel"
	logAttrBorrowingID = "borrowing_id"
	logAttrUserID      = "user_id"
)

// ErrScanInProgress is returned when a scan is started while another one is running.
var ErrScanInProgress = errors.New("overdue scan already in progress")

// Store defines the store operations needed by the CommandHandler.
type Store interface {
	Borrowings(ctx context.Context, filter store.BorrowingFilter) ([]core.Borrowing, error)
	ChannelLinks(ctx context.Context) ([]store.ChannelLink, error)
}

// CommandHandler runs overdue scans. Copies share the in-progress guard.
type CommandHandler struct {
	store            Store
	publisher        shell.EventPublisher
	logger           shell.Logger
	metricsCollector shell.MetricsCollector
	running          *atomic.Bool
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithLogger sets the logger for skipped borrowings and publishing failures.
func WithLogger(logger shell.Logger) Option {
	return func(h *CommandHandler) {
		h.logger = logger
	}
}

// WithMetrics sets the metrics collector for the overdue gauge and event publishing.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *CommandHandler) {
		h.metricsCollector = collector
	}
}

// NewCommandHandler creates a new CommandHandler publishing to publisher.
func NewCommandHandler(s Store, publisher shell.EventPublisher, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:     s,
		publisher: publisher,
		running:   &atomic.Bool{},
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes one scan: read -> Decide -> publish.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	noRetries := shell.RetryMetrics{Attempts: 1, LastErrorType: "none"}

	if !h.running.CompareAndSwap(false, true) {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, ErrScanInProgress
	}
	defer h.running.Store(false)

	// a replica that lags a little behind is good enough for a daily reminder
	readCtx := store.WithEventualConsistency(ctx)

	overdue, err := h.store.Borrowings(readCtx, store.BorrowingFilter{OverdueOn: &command.Today})
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	links, err := h.store.ChannelLinks(readCtx)
	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(noRetries)}, err
	}

	notices := Decide(overdue, links, command)

	for _, borrowing := range notices.Unreachable {
		if h.logger != nil {
			h.logger.Warn(logMsgNoChannel, logAttrBorrowingID, borrowing.ID.String(), logAttrUserID, borrowing.UserID.String())
		}
	}

	shell.PublishEvents(ctx, h.publisher, h.logger, h.metricsCollector, notices.Events...)

	if h.metricsCollector != nil {
		h.metricsCollector.RecordValue(OverdueBorrowingsMetric, float64(len(overdue)), nil)
	}

	return Result{
		HandlerResult: shell.NewSuccessResult(noRetries),
		Overdue:       len(overdue),
		Notified:      len(overdue) - len(notices.Unreachable),
		Skipped:       len(notices.Unreachable),
		AllClear:      len(notices.Events) - (len(overdue) - len(notices.Unreachable)),
	}, nil
}
