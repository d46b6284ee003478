package shell

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

var (
	// ErrMappingToMessageFailed is returned when a domain event cannot be encoded as a message.
	ErrMappingToMessageFailed = errors.New("mapping to message failed")

	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

var messageJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageEnvelope combines a domain event with its metadata, as it travels through the broker.
type MessageEnvelope struct {
	DomainEvent     core.DomainEvent
	MessageMetadata MessageMetadata
}

// wireMessage is the JSON shape of a MessageEnvelope.
type wireMessage struct {
	EventType  string              `json:"event_type"`
	OccurredAt time.Time           `json:"occurred_at"`
	Metadata   MessageMetadata     `json:"metadata"`
	Payload    jsoniter.RawMessage `json:"payload"`
}

// BuildMessageEnvelope creates a new MessageEnvelope from domain event and metadata.
func BuildMessageEnvelope(domainEvent core.DomainEvent, metadata MessageMetadata) MessageEnvelope {
	return MessageEnvelope{
		DomainEvent:     domainEvent,
		MessageMetadata: metadata,
	}
}

// MessageJSONFrom encodes a domain event and its metadata as a broker message body.
func MessageJSONFrom(event core.DomainEvent, metadata MessageMetadata) ([]byte, error) {
	payloadJSON, err := messageJSON.Marshal(event)
	if err != nil {
		return nil, errors.Join(ErrMappingToMessageFailed, err)
	}

	body, err := messageJSON.Marshal(wireMessage{
		EventType:  event.EventType(),
		OccurredAt: event.HasOccurredAt(),
		Metadata:   metadata,
		Payload:    payloadJSON,
	})
	if err != nil {
		return nil, errors.Join(ErrMappingToMessageFailed, err)
	}

	return body, nil
}

// MessageEnvelopeFrom decodes a broker message body.
func MessageEnvelopeFrom(body []byte) (MessageEnvelope, error) {
	var message wireMessage
	if err := messageJSON.Unmarshal(body, &message); err != nil {
		return MessageEnvelope{}, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	domainEvent, err := DomainEventFrom(message.EventType, message.Payload)
	if err != nil {
		return MessageEnvelope{}, err
	}

	return BuildMessageEnvelope(domainEvent, message.Metadata), nil
}

// DomainEventFrom converts an event type and its JSON payload to the corresponding DomainEvent.
func DomainEventFrom(eventType string, payloadJSON []byte) (core.DomainEvent, error) {
	switch eventType {
	case core.BorrowingCreatedEventType:
		return unmarshalEvent[core.BorrowingCreated](payloadJSON)

	case core.BorrowingReturnedEventType:
		return unmarshalEvent[core.BorrowingReturned](payloadJSON)

	case core.FinePaymentRequestedEventType:
		return unmarshalEvent[core.FinePaymentRequested](payloadJSON)

	case core.PaymentCompletedEventType:
		return unmarshalEvent[core.PaymentCompleted](payloadJSON)

	case core.BorrowingOverdueEventType:
		return unmarshalEvent[core.BorrowingOverdue](payloadJSON)

	case core.NoOverdueBorrowingsEventType:
		return unmarshalEvent[core.NoOverdueBorrowings](payloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalEvent[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(E)

	if err := messageJSON.Unmarshal(payloadJSON, payload); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
