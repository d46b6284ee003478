package shell

import (
	"github.com/google/uuid"
)

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message or request that caused this message.
type CausationID = string

// CorrelationID represents the ID correlating related messages.
type CorrelationID = string

// MessageMetadata contains message tracking information.
type MessageMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
}

// BuildMessageMetadata creates MessageMetadata from UUID values.
func BuildMessageMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) MessageMetadata {
	return MessageMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// NewMessageMetadata creates MessageMetadata for a message that starts its own correlation chain.
func NewMessageMetadata() MessageMetadata {
	messageID := uuid.New()

	return BuildMessageMetadata(messageID, messageID, messageID)
}
