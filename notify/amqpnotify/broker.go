package amqpnotify

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeKind = "topic"

	// DefaultPrefetch is the number of unacknowledged deliveries the relay holds at once.
	DefaultPrefetch = 8

	// RoutingKeyPrefix prefixes the event type in every routing key.
	RoutingKeyPrefix = "rentals."
)

var (
	// ErrBrokerUnavailable is returned when the connection or the channel cannot be opened.
	ErrBrokerUnavailable = errors.New("message broker unavailable")

	// ErrTopologyDeclarationFailed is returned when the exchange or the queue cannot be declared.
	ErrTopologyDeclarationFailed = errors.New("declaring broker topology failed")

	// ErrConsumeFailed is returned when consuming the queue cannot start.
	ErrConsumeFailed = errors.New("starting the consumer failed")
)

// Config names the broker and its topology.
type Config struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
}

// Broker holds one connection and one channel with the exchange, and optionally the queue, declared.
type Broker struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	config Config
}

// Dial connects and declares the topic exchange. The queue is declared and bound to all
// routing keys below RoutingKeyPrefix when config.Queue is set.
func Dial(config Config) (*Broker, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, errors.Join(ErrBrokerUnavailable, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Join(ErrBrokerUnavailable, err)
	}

	broker := &Broker{conn: conn, ch: ch, config: config}

	if err := broker.declare(); err != nil {
		_ = broker.Close()
		return nil, err
	}

	return broker, nil
}

func (b *Broker) declare() error {
	if err := b.ch.ExchangeDeclare(b.config.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return errors.Join(ErrTopologyDeclarationFailed, err)
	}

	if b.config.Queue == "" {
		return nil
	}

	queue, err := b.ch.QueueDeclare(b.config.Queue, true, false, false, false, nil)
	if err != nil {
		return errors.Join(ErrTopologyDeclarationFailed, err)
	}

	if err := b.ch.QueueBind(queue.Name, RoutingKeyPrefix+"#", b.config.Exchange, false, nil); err != nil {
		return errors.Join(ErrTopologyDeclarationFailed, err)
	}

	prefetch := b.config.Prefetch
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}

	if err := b.ch.Qos(prefetch, 0, false); err != nil {
		return errors.Join(ErrTopologyDeclarationFailed, err)
	}

	return nil
}

// Publisher returns a Publisher on the broker's channel.
func (b *Broker) Publisher() Publisher {
	return NewPublisher(b.ch, b.config.Exchange)
}

// Deliveries starts consuming the queue with manual acknowledgement.
func (b *Broker) Deliveries(ctx context.Context, consumerTag string) (<-chan amqp.Delivery, error) {
	deliveries, err := b.ch.ConsumeWithContext(ctx, b.config.Queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, errors.Join(ErrConsumeFailed, err)
	}

	return deliveries, nil
}

// Close closes the channel and the connection.
func (b *Broker) Close() error {
	if b.ch != nil {
		_ = b.ch.Close()
	}

	if b.conn != nil {
		return b.conn.Close()
	}

	return nil
}
