package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/notifier"
)

// NotifyCmd sends one notification, which is handy for checking the tray app.
type NotifyCmd struct {
	Title  string `help:"Notification title." default:"⏰ Habit reminder"`
	Body   string `arg:"" optional:"" help:"Notification text." default:"Notifications are working."`
	DryRun bool   `help:"Print the notification to stdout instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n notifier.Capability = notifier.NewTray(true)
	if c.DryRun {
		n = notifier.NewConsole(ctx.Out)
	}

	if n.RequestPermission(bg) != notifier.PermissionGranted {
		return fmt.Errorf("%w: is the %s tray app running?", notifier.ErrPermissionDenied, constants.AppName)
	}
	return n.Show(bg, c.Title, c.Body)
}
