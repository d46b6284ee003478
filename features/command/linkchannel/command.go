package linkchannel

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-rentals-go/shell"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

const (
	commandType = "LinkNotificationChannel"
)

// ErrEmptyChannelID is returned when no channel id is given.
var ErrEmptyChannelID = errors.New("channel id must not be empty")

// Command represents the intent to receive notices on a channel.
type Command struct {
	UserID    uuid.UUID
	ChannelID string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand(userID uuid.UUID, channelID string) Command {
	return Command{
		UserID:    userID,
		ChannelID: strings.TrimSpace(channelID),
	}
}

// Link returns the channel link the command asks for.
func (c Command) Link() store.ChannelLink {
	return store.ChannelLink{UserID: c.UserID, ChannelID: c.ChannelID}
}

// Result contains the link now in place.
type Result struct {
	shell.HandlerResult
	Link store.ChannelLink
}
