package scanoverdue

import (
	"time"

	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	commandType = "ScanOverdueBorrowings"
)

// Command represents the intent to scan for overdue borrowings as of a calendar day.
type Command struct {
	Today      core.Date
	OccurredAt core.OccurredAtTS
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for the calendar day of now.
func BuildCommand(now time.Time) Command {
	return Command{
		Today:      core.DateOf(now),
		OccurredAt: core.ToOccurredAt(now),
	}
}

// Result summarizes a scan.
type Result struct {
	shell.HandlerResult
	Overdue  int
	Notified int
	Skipped  int
	AllClear int
}
