package notify

import (
	"fmt"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

// Notice is a message for one notification channel.
type Notice struct {
	ChannelID string
	EventType string
	Text      string
}

// NoticeFrom renders the notice for an event. It returns false for events that address no channel.
func NoticeFrom(event core.DomainEvent) (Notice, bool) {
	switch e := event.(type) {
	case core.BorrowingCreated:
		return addressed(e.ChannelID, e.EventType(), fmt.Sprintf(
			"You borrowed %q on %s. Please return it by %s. Daily fee %s, rental cost %s.",
			e.BookTitle, e.BorrowDate, e.ExpectedReturnDate, e.DailyFee, e.AccruedCost,
		))

	case core.BorrowingOverdue:
		return addressed(e.ChannelID, e.EventType(), fmt.Sprintf(
			"Borrowing %s was due on %s and is %d day(s) overdue. Please return the book.",
			e.BorrowingID, e.ExpectedReturnDate, e.ExpiredDays,
		))

	case core.NoOverdueBorrowings:
		return addressed(e.ChannelID, e.EventType(), fmt.Sprintf(
			"Nothing overdue as of %s. Thank you!", e.ScanDate,
		))
	}

	return Notice{}, false
}

func addressed(channelID string, eventType string, text string) (Notice, bool) {
	if channelID == "" {
		return Notice{}, false
	}

	return Notice{ChannelID: channelID, EventType: eventType, Text: text}, true
}
