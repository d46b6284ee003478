package completepayment

import (
	"time"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

const (
	commandType = "CompletePayment"
)

// Command represents the provider's confirmation that a checkout session was paid.
type Command struct {
	SessionID  string
	Today      core.Date
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command confirmed at now.
func BuildCommand(sessionID string, now time.Time) Command {
	return Command{
		SessionID:  sessionID,
		Today:      core.DateOf(now),
		OccurredAt: core.ToOccurredAt(now),
	}
}
