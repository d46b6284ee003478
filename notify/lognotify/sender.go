// Package lognotify delivers notices to the log. It is the sender used when no chat integration is configured.
package lognotify

import (
	"context"

	"github.com/AntonStoeckl/library-rentals-go/notify"
	"github.com/AntonStoeckl/library-rentals-go/shell"
)

const (
	logMsgNotice     = "notice"
	logAttrChannelID = "channel_id"
	logAttrText      = "text"
)

// Sender writes each notice as one info log record.
type Sender struct {
	logger shell.Logger
}

// New creates a new Sender.
func New(logger shell.Logger) Sender {
	return Sender{logger: logger}
}

// Send implements notify.Sender.
func (s Sender) Send(_ context.Context, notice notify.Notice) error {
	s.logger.Info(logMsgNotice,
		logAttrChannelID, notice.ChannelID,
		shell.LogAttrEventType, notice.EventType,
		logAttrText, notice.Text,
	)

	return nil
}
