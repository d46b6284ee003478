package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

// EventPublisherSpy records published domain events. It fails every call after FailWith.
type EventPublisherSpy struct {
	events []core.DomainEvent
	err    error
	mu     sync.Mutex
}

// NewEventPublisherSpy creates a new EventPublisherSpy.
func NewEventPublisherSpy() *EventPublisherSpy {
	return &EventPublisherSpy{}
}

// Publish implements the EventPublisher interface.
func (s *EventPublisherSpy) Publish(_ context.Context, event core.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.events = append(s.events, event)

	return nil
}

// FailWith makes every following Publish return err.
func (s *EventPublisherSpy) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

// Events returns the published events.
func (s *EventPublisherSpy) Events() []core.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.DomainEvent(nil), s.events...)
}

// EventsOfType returns the published events with the given event type.
func (s *EventPublisherSpy) EventsOfType(eventType string) []core.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []core.DomainEvent
	for _, event := range s.events {
		if event.EventType() == eventType {
			matching = append(matching, event)
		}
	}

	return matching
}
