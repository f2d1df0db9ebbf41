package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

// Desktop shows OS notifications, useful when the dashboard runs on a
// workstation rather than a server.
type Desktop struct{}

// NewDesktop creates the desktop channel.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// Name implements Notifier.
func (d *Desktop) Name() string { return "desktop" }

// Send shows the message as an OS notification.
func (d *Desktop) Send(ctx context.Context, text string) error {
	return beeep.Notify("Power Meter", text, "")
}
