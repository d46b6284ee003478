package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

func Test_MessageEnvelopeFrom_DecodesWhatMessageJSONFromEncoded(t *testing.T) {
	// arrange
	today := core.MustParseDate("2025-03-10")
	borrowing := core.BuildBorrowing(uuid.New(), uuid.New(), uuid.New(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-07"))
	event := core.BuildBorrowingOverdue(borrowing, "chat-7", today, time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))
	metadata := shell.NewMessageMetadata()

	// act
	body, encodeErr := shell.MessageJSONFrom(event, metadata)
	envelope, decodeErr := shell.MessageEnvelopeFrom(body)

	// assert
	require.NoError(t, encodeErr)
	require.NoError(t, decodeErr)
	assert.Equal(t, metadata, envelope.MessageMetadata)
	decoded, ok := envelope.DomainEvent.(core.BorrowingOverdue)
	require.True(t, ok)
	assert.Equal(t, 3, decoded.ExpiredDays)
	assert.Equal(t, "chat-7", decoded.ChannelID)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func Test_MessageEnvelopeFrom_Fails_ForUnknownEventType(t *testing.T) {
	// arrange
	body := []byte(`{"event_type":"BookBurned","occurred_at":"2025-03-10T06:00:00Z","metadata":{},"payload":{}}`)

	// act
	_, err := shell.MessageEnvelopeFrom(body)

	// assert
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

type publisherSpy struct {
	published []core.DomainEvent
	err       error
}

func (p *publisherSpy) Publish(_ context.Context, event core.DomainEvent) error {
	p.published = append(p.published, event)
	return p.err
}

func Test_PublishEvents_KeepsGoing_WhenThePublisherFails(t *testing.T) {
	// arrange
	publisher := &publisherSpy{err: errors.New("broker down")}
	first := core.BuildNoOverdueBorrowings(uuid.NewString(), "chat-1", core.MustParseDate("2025-03-10"), time.Now())
	second := core.BuildNoOverdueBorrowings(uuid.NewString(), "chat-2", core.MustParseDate("2025-03-10"), time.Now())

	// act
	shell.PublishEvents(context.Background(), publisher, nil, nil, first, second)

	// assert
	assert.Len(t, publisher.published, 2)
}
