package scanoverdue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/features/command/scanoverdue"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

type handlerSpy struct {
	mu       sync.Mutex
	commands []scanoverdue.Command
	err      error
	called   chan struct{}
}

func newHandlerSpy(err error) *handlerSpy {
	return &handlerSpy{err: err, called: make(chan struct{}, 16)}
}

func (h *handlerSpy) Handle(_ context.Context, command scanoverdue.Command) (scanoverdue.Result, error) {
	h.mu.Lock()
	h.commands = append(h.commands, command)
	h.mu.Unlock()
	h.called <- struct{}{}

	return scanoverdue.Result{Overdue: 3}, h.err
}

func Test_NewScheduler_RejectsNonPositiveInterval(t *testing.T) {
	_, err := scanoverdue.NewScheduler(newHandlerSpy(nil), scanoverdue.WithInterval(0))

	assert.ErrorIs(t, err, scanoverdue.ErrInvalidInterval)
}

func Test_Scheduler_Run_ScansOnEveryTick_UntilCanceled(t *testing.T) {
	// arrange
	handler := newHandlerSpy(nil)
	logger := testdoubles.NewLoggerSpy()
	fixed := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	scheduler, err := scanoverdue.NewScheduler(handler,
		scanoverdue.WithInterval(5*time.Millisecond),
		scanoverdue.WithClock(func() time.Time { return fixed }),
		scanoverdue.WithSchedulerLogger(logger),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// act
	go func() { done <- scheduler.Run(ctx) }()
	<-handler.called
	<-handler.called
	cancel()

	// assert
	require.NoError(t, <-done)
	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.GreaterOrEqual(t, len(handler.commands), 2)
	assert.Equal(t, core.MustParseDate("2025-03-10"), handler.commands[0].Today)
	assert.True(t, logger.HasInfoLog("overdue scan completed"))
}

func Test_Scheduler_Run_KeepsGoing_AfterAFailedScan(t *testing.T) {
	// arrange
	handler := newHandlerSpy(errors.New("database gone"))
	logger := testdoubles.NewLoggerSpy()
	scheduler, err := scanoverdue.NewScheduler(handler,
		scanoverdue.WithInterval(time.Hour),
		scanoverdue.WithScanOnStart(),
		scanoverdue.WithSchedulerLogger(logger),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// act
	go func() { done <- scheduler.Run(ctx) }()
	<-handler.called
	cancel()

	// assert
	require.NoError(t, <-done)
	assert.True(t, logger.HasErrorLog("overdue scan failed"))
}
