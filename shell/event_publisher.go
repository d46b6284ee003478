package shell

import (
	"context"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

// EventPublisher hands domain events to the notification transport.
// It is called after the transaction that produced the events has committed.
type EventPublisher interface {
	Publish(ctx context.Context, event core.DomainEvent) error
}

// PublishEvents publishes each event and only logs failures: a notification that cannot be
// delivered never undoes the committed state change that caused it.
func PublishEvents(
	ctx context.Context,
	publisher EventPublisher,
	logger Logger,
	metricsCollector MetricsCollector,
	events ...core.DomainEvent,
) {

	if publisher == nil {
		return
	}

	for _, event := range events {
		status := StatusSuccess

		if err := publisher.Publish(ctx, event); err != nil {
			status = StatusError

			if logger != nil {
				logger.Warn(LogMsgEventPublishFailed, LogAttrEventType, event.EventType(), LogAttrError, err.Error())
			}
		}

		if metricsCollector != nil {
			metricsCollector.IncrementCounter(
				EventsPublishedMetric,
				map[string]string{LogAttrEventType: event.EventType(), LogAttrStatus: status},
			)
		}
	}
}
