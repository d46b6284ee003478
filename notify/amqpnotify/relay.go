package amqpnotify

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	logMsgUndecodable  = "dropping undecodable message"
	logMsgRelayFailed  = "relaying message failed"
	logAttrMessageID   = "message_id"
	logAttrRoutingKey  = "routing_key"
	logAttrRedelivered = "redelivered"
	logMsgAckFailed    = "acknowledging message failed"
	logMsgRelayStopped = "relay stopped, delivery channel closed"
)

// Relay moves events from the queue to a target publisher.
// A message that cannot be decoded is dropped. A message the target rejects is requeued once,
// and dropped when it fails again on redelivery.
type Relay struct {
	target shell.EventPublisher
	logger shell.Logger
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithRelayLogger sets the logger for dropped and requeued messages.
func WithRelayLogger(logger shell.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a new Relay delivering to target.
func NewRelay(target shell.EventPublisher, opts ...RelayOption) Relay {
	relay := Relay{target: target}

	for _, opt := range opts {
		opt(&relay)
	}

	return relay
}

// Run relays deliveries until ctx is done or the delivery channel closes.
func (r Relay) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				r.warn(logMsgRelayStopped)
				return nil
			}

			r.Handle(ctx, delivery)
		}
	}
}

// Handle relays one delivery and settles it.
func (r Relay) Handle(ctx context.Context, delivery amqp.Delivery) {
	envelope, err := shell.MessageEnvelopeFrom(delivery.Body)
	if err != nil {
		r.warn(logMsgUndecodable, logAttrMessageID, delivery.MessageId, logAttrRoutingKey, delivery.RoutingKey, shell.LogAttrError, err.Error())
		r.settle(delivery.Nack(false, false))

		return
	}

	if err := r.target.Publish(ctx, envelope.DomainEvent); err != nil {
		r.warn(logMsgRelayFailed, logAttrMessageID, delivery.MessageId, logAttrRedelivered, delivery.Redelivered, shell.LogAttrError, err.Error())
		r.settle(delivery.Nack(false, !delivery.Redelivered))

		return
	}

	r.settle(delivery.Ack(false))
}

func (r Relay) settle(err error) {
	if err != nil {
		r.warn(logMsgAckFailed, shell.LogAttrError, err.Error())
	}
}

func (r Relay) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
