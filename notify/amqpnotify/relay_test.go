package amqpnotify_test

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/notify/amqpnotify"
	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/testutil/testdoubles"
)

type acknowledgerSpy struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *acknowledgerSpy) Ack(_ uint64, _ bool) error {
	a.acked++
	return nil
}

func (a *acknowledgerSpy) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue

	return nil
}

func (a *acknowledgerSpy) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

func givenDelivery(t *testing.T, event core.DomainEvent, redelivered bool) (amqp.Delivery, *acknowledgerSpy) {
	t.Helper()

	body, err := shell.MessageJSONFrom(event, shell.NewMessageMetadata())
	require.NoError(t, err, "error in arranging test data")

	ack := &acknowledgerSpy{}

	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}, ack
}

func Test_Relay_Handle_ForwardsAndAcks(t *testing.T) {
	// arrange
	target := testdoubles.NewEventPublisherSpy()
	relay := amqpnotify.NewRelay(target)
	event := givenOverdueEvent()
	delivery, ack := givenDelivery(t, event, false)

	// act
	relay.Handle(context.Background(), delivery)

	// assert
	assert.Equal(t, 1, ack.acked)
	require.Len(t, target.Events(), 1)
	assert.Equal(t, event, target.Events()[0])
}

func Test_Relay_Handle_DropsUndecodableMessages(t *testing.T) {
	// arrange
	logger := testdoubles.NewLoggerSpy()
	relay := amqpnotify.NewRelay(testdoubles.NewEventPublisherSpy(), amqpnotify.WithRelayLogger(logger))
	ack := &acknowledgerSpy{}

	// act
	relay.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	// assert
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.True(t, logger.HasWarnLog("dropping undecodable message"))
}

func Test_Relay_Handle_RequeuesOnce_WhenTheTargetFails(t *testing.T) {
	// arrange
	target := testdoubles.NewEventPublisherSpy()
	target.FailWith(errors.New("chat api down"))
	relay := amqpnotify.NewRelay(target)
	first, firstAck := givenDelivery(t, givenOverdueEvent(), false)
	again, againAck := givenDelivery(t, givenOverdueEvent(), true)

	// act
	relay.Handle(context.Background(), first)
	relay.Handle(context.Background(), again)

	// assert
	assert.True(t, firstAck.requeue)
	assert.Equal(t, 1, againAck.nacked)
	assert.False(t, againAck.requeue)
}

func Test_Relay_Run_StopsWhenTheDeliveryChannelCloses(t *testing.T) {
	// arrange
	target := testdoubles.NewEventPublisherSpy()
	deliveries := make(chan amqp.Delivery, 1)
	delivery, ack := givenDelivery(t, givenOverdueEvent(), false)
	deliveries <- delivery
	close(deliveries)

	// act
	err := amqpnotify.NewRelay(target).Run(context.Background(), deliveries)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, ack.acked)
}
