package testdoubles

import (
	"context"
	"sync"
)

// LoggerSpy implements both the Logger and the ContextualLogger interfaces and records every call.
type LoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// SpyLogRecord represents a recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

// NewLoggerSpy creates a new LoggerSpy.
func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record("debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record("info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record("warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record("error", msg, args) }

func (s *LoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record("debug", msg, args)
}

func (s *LoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record("info", msg, args)
}

func (s *LoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record("warn", msg, args)
}

func (s *LoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record("error", msg, args)
}

// HasLog reports whether a message was logged at level.
func (s *LoggerSpy) HasLog(level string, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Level == level && r.Message == msg {
			return true
		}
	}

	return false
}

// HasInfoLog reports whether msg was logged at info level.
func (s *LoggerSpy) HasInfoLog(msg string) bool { return s.HasLog("info", msg) }

// HasWarnLog reports whether msg was logged at warn level.
func (s *LoggerSpy) HasWarnLog(msg string) bool { return s.HasLog("warn", msg) }

// HasErrorLog reports whether msg was logged at error level.
func (s *LoggerSpy) HasErrorLog(msg string) bool { return s.HasLog("error", msg) }

// Records returns a copy of all recorded calls.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

func (s *LoggerSpy) record(level string, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args})
}
