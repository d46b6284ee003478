package scanoverdue

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	// DefaultInterval is how often the Scheduler scans unless configured otherwise.
	DefaultInterval = 24 * time.Hour

	logMsgScanSkipped   = "overdue scan skipped, previous scan still running"
	logMsgScanFailed    = "overdue scan failed"
	logMsgScanCompleted = "overdue scan completed"
	logAttrOverdue      = "overdue"
	logAttrSkipped      = "skipped"
)

// ErrInvalidInterval is returned when the scheduler interval is not positive.
var ErrInvalidInterval = errors.New("scan interval must be positive")

// Handler runs one scan. CommandHandler and its observable wrapper implement it.
type Handler interface {
	Handle(ctx context.Context, command Command) (Result, error)
}

// Scheduler fires a scan at a fixed interval until its context is done.
type Scheduler struct {
	handler     Handler
	interval    time.Duration
	clock       func() time.Time
	logger      shell.Logger
	scanOnStart bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler) error

// WithInterval sets the time between two scans.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.interval = interval

		return nil
	}
}

// WithClock sets the time source for the scan day.
func WithClock(clock func() time.Time) SchedulerOption {
	return func(s *Scheduler) error {
		s.clock = clock
		return nil
	}
}

// WithSchedulerLogger sets the logger for scan outcomes.
func WithSchedulerLogger(logger shell.Logger) SchedulerOption {
	return func(s *Scheduler) error {
		s.logger = logger
		return nil
	}
}

// WithScanOnStart makes Run scan once right away instead of waiting a full interval.
func WithScanOnStart() SchedulerOption {
	return func(s *Scheduler) error {
		s.scanOnStart = true
		return nil
	}
}

// NewScheduler creates a new Scheduler.
func NewScheduler(handler Handler, opts ...SchedulerOption) (*Scheduler, error) {
	scheduler := &Scheduler{
		handler:  handler,
		interval: DefaultInterval,
		clock:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(scheduler); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}

// Run scans at every tick until ctx is done. A failed scan is logged and does not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.scanOnStart {
		s.scan(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	result, err := s.handler.Handle(ctx, BuildCommand(s.clock()))

	if s.logger == nil {
		return
	}

	switch {
	case errors.Is(err, ErrScanInProgress):
		s.logger.Warn(logMsgScanSkipped)
	case err != nil:
		s.logger.Error(logMsgScanFailed, shell.LogAttrError, err.Error())
	default:
		s.logger.Info(logMsgScanCompleted, logAttrOverdue, result.Overdue, logAttrSkipped, result.Skipped)
	}
}
