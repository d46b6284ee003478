package amqpnotify

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const contentTypeJSON = "application/json"

// ErrPublishFailed is returned when the broker rejects a message.
var ErrPublishFailed = errors.New("publishing message failed")

// Channel is the part of *amqp.Channel the Publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher publishes domain events as persistent JSON messages.
type Publisher struct {
	channel     Channel
	exchange    string
	newMetadata func() shell.MessageMetadata
}

// NewPublisher creates a new Publisher on channel.
func NewPublisher(channel Channel, exchange string) Publisher {
	return Publisher{
		channel:     channel,
		exchange:    exchange,
		newMetadata: shell.NewMessageMetadata,
	}
}

// RoutingKey returns the routing key an event is published with.
func RoutingKey(event core.DomainEvent) string {
	return RoutingKeyPrefix + event.EventType()
}

// Publish implements shell.EventPublisher.
func (p Publisher) Publish(ctx context.Context, event core.DomainEvent) error {
	metadata := p.newMetadata()

	body, err := shell.MessageJSONFrom(event, metadata)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:   contentTypeJSON,
		DeliveryMode:  amqp.Persistent,
		MessageId:     metadata.MessageID,
		CorrelationId: metadata.CorrelationID,
		Type:          event.EventType(),
		Timestamp:     event.HasOccurredAt(),
		Body:          body,
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(event), false, false, msg); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	return nil
}
