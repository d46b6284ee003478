package scanoverdue

import (
	"github.com/AntonStoeckl/library-rentals-go/core"
	"github.com/AntonStoeckl/library-rentals-go/store"
)

// Notices is the outcome of a scan: what to send, and which overdue borrowings have nobody to send to.
type Notices struct {
	Events      core.DomainEvents
	Unreachable []core.Borrowing
}

// Decide turns the overdue borrowings and the channel links into notices.
//
//	GIVEN: the open borrowings expected back on or before the scan day, and all channel links
//	WHEN: ScanOverdueBorrowings is received
//	THEN: BorrowingOverdue for each overdue borrowing whose owner has a channel
//	THEN: NoOverdueBorrowings for each linked user without overdue borrowings
//	SKIP: overdue borrowings of users without a channel
func Decide(overdue []core.Borrowing, links []store.ChannelLink, command Command) Notices {
	channels := make(map[string]string, len(links))
	for _, link := range links {
		channels[link.UserID.String()] = link.ChannelID
	}

	var notices Notices
	usersWithOverdue := make(map[string]bool)

	for _, borrowing := range overdue {
		if !borrowing.IsOverdueOn(command.Today) {
			continue
		}

		userID := borrowing.UserID.String()
		usersWithOverdue[userID] = true

		channelID, ok := channels[userID]
		if !ok {
			notices.Unreachable = append(notices.Unreachable, borrowing)
			continue
		}

		notices.Events = append(notices.Events,
			core.BuildBorrowingOverdue(borrowing, channelID, command.Today, command.OccurredAt))
	}

	for _, link := range links {
		userID := link.UserID.String()
		if usersWithOverdue[userID] {
			continue
		}

		notices.Events = append(notices.Events,
			core.BuildNoOverdueBorrowings(userID, link.ChannelID, command.Today, command.OccurredAt))
	}

	return notices
}
