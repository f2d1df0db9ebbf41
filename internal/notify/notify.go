// Package notify delivers event messages over the configured channels.
// Delivery is best-effort: failures are logged and never propagate into
// the polling pipeline.
package notify

import (
	"context"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/metrics"
)

// Notifier delivers a plain-text message to one channel.
type Notifier interface {
	// Name identifies the channel in logs.
	Name() string
	// Send delivers the message, returning any transport error.
	Send(ctx context.Context, text string) error
}

// Multi fans a message out to several channels, logging failures instead
// of returning them.
type Multi struct {
	channels []Notifier
}

// NewMulti creates a fan-out notifier. A Multi with no channels silently
// discards messages (notification delivery disabled).
func NewMulti(channels ...Notifier) *Multi {
	return &Multi{channels: channels}
}

// Name implements Notifier.
func (m *Multi) Name() string { return "multi" }

// Send delivers the message to every channel, best-effort. Always nil.
func (m *Multi) Send(ctx context.Context, text string) error {
	for _, ch := range m.channels {
		if err := ch.Send(ctx, text); err != nil {
			logger.Error("failed to send notification",
				"channel", ch.Name(), "error", err)
			metrics.NotificationsFailed.WithLabelValues(ch.Name()).Inc()
		}
	}
	return nil
}

// Channels returns the number of configured channels.
func (m *Multi) Channels() int {
	return len(m.channels)
}
