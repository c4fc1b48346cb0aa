package system

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/streakly/internal/cli"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/notifier"
)

const saveTimeout = 10 * time.Second

// RemindCmd runs the reminder scheduler in the foreground until interrupted.
type RemindCmd struct {
	Console bool `help:"Print reminders to the terminal instead of sending them to the tray app."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	if !ctx.Config.Reminders.Enabled {
		return apperrors.WithHint(errors.New("reminders are disabled"), "set reminders.enabled: true in "+ctx.ConfigPath)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var n notifier.Capability = notifier.NewTray(true)
	if c.Console {
		n = notifier.NewConsole(ctx.Out)
	}

	s, closeFn, err := ctx.OpenSession(sigCtx, n)
	if err != nil {
		return err
	}

	count := 0
	for _, h := range s.State().Habits {
		if h.HasReminder() {
			count++
		}
	}
	ctx.Printf("Watching %d habit reminder(s) for %s. Press Ctrl+C to stop.\n", count, s.Identity().Email)

	<-sigCtx.Done()
	if n.Permission() == notifier.PermissionDenied {
		ctx.Println("⚠ Notifications were not permitted. Is the tray app running? Try --console.")
	}
	return closeFn()
}
