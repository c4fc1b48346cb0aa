package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/session"
	"github.com/julianstephens/streakly/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	store, err := ctx.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	n := notifier.NewTray(ctx.Config.Reminders.Enabled)
	mgr := session.NewManager(ctx.Provider, func(id auth.Identity) session.Options {
		return ctx.SessionOptions(id, store, n)
	})

	// A failed load still yields a usable session; the UI shows the warning.
	loadErr := mgr.Start(bg)
	if loadErr != nil {
		logger.Warn("Starting with empty state", "error", loadErr)
	}

	p := tea.NewProgram(tui.NewModel(mgr.Current(), ctx.Provider, loadErr), tea.WithAltScreen())
	mgr.OnChange(func(s *session.Session) {
		p.Send(tui.SessionMsg{Session: s})
	})

	_, runErr := p.Run()

	if s := mgr.Current(); s != nil {
		flushCtx, cancel := context.WithTimeout(bg, saveTimeout)
		if err := s.Flush(flushCtx); err != nil {
			fmt.Fprintf(ctx.Out, "⚠ Your last changes may not have been saved: %v\n", err)
		}
		cancel()
	}
	mgr.Close()
	return runErr
}
