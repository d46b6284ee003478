package amqpnotify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/notify/amqpnotify"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type channelSpy struct {
	messages []published
	err      error
}

func (c *channelSpy) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.messages = append(c.messages, published{exchange: exchange, key: key, msg: msg})
	return c.err
}

func givenOverdueEvent() core.BorrowingOverdue {
	borrowing := core.BuildBorrowing(uuid.New(), uuid.New(), uuid.New(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-08"))

	return core.BuildBorrowingOverdue(borrowing, "99", core.MustParseDate("2025-03-10"), time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))
}

func Test_Publisher_Publish_SendsAPersistentEnvelope_RoutedByEventType(t *testing.T) {
	// arrange
	channel := &channelSpy{}
	publisher := amqpnotify.NewPublisher(channel, "rentals")
	event := givenOverdueEvent()

	// act
	err := publisher.Publish(context.Background(), event)

	// assert
	require.NoError(t, err)
	require.Len(t, channel.messages, 1)
	sent := channel.messages[0]
	assert.Equal(t, "rentals", sent.exchange)
	assert.Equal(t, "rentals.BorrowingOverdue", sent.key)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.NotEmpty(t, sent.msg.MessageId)

	envelope, err := shell.MessageEnvelopeFrom(sent.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, event, envelope.DomainEvent)
	assert.Equal(t, sent.msg.MessageId, envelope.MessageMetadata.MessageID)
}

func Test_Publisher_Publish_Fails_WhenTheBrokerRejects(t *testing.T) {
	publisher := amqpnotify.NewPublisher(&channelSpy{err: errors.New("channel closed")}, "rentals")

	err := publisher.Publish(context.Background(), givenOverdueEvent())

	assert.ErrorIs(t, err, amqpnotify.ErrPublishFailed)
}
