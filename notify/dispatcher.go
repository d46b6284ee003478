package notify

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

// ErrDeliveryFailed is returned when the Sender could not deliver a notice.
var ErrDeliveryFailed = errors.New("notice delivery failed")

// Sender delivers a notice to its channel.
type Sender interface {
	Send(ctx context.Context, notice Notice) error
}

// Dispatcher renders events into notices and sends them.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher creates a new Dispatcher sending through sender.
func NewDispatcher(sender Sender) Dispatcher {
	return Dispatcher{sender: sender}
}

// Publish implements shell.EventPublisher.
func (d Dispatcher) Publish(ctx context.Context, event core.DomainEvent) error {
	notice, ok := NoticeFrom(event)
	if !ok {
		return nil
	}

	if err := d.sender.Send(ctx, notice); err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	return nil
}
