package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/cli/account"
	"github.com/julianstephens/streakly/internal/cli/coaching"
	"github.com/julianstephens/streakly/internal/cli/goals"
	"github.com/julianstephens/streakly/internal/cli/habits"
	"github.com/julianstephens/streakly/internal/cli/progress"
	"github.com/julianstephens/streakly/internal/cli/system"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Store   string `help:"Override the store: a SQLite path, a PostgreSQL URL (no embedded password) or a streakly server URL."`
	Debug   bool   `help:"Log debug output to stderr."`

	Login  account.LoginCmd  `cmd:"" help:"Sign in with an email address."`
	Logout account.LogoutCmd `cmd:"" help:"Sign out."`
	Whoami account.WhoamiCmd `cmd:"" help:"Show the signed-in user."`
	Token  account.TokenCmd  `cmd:"" help:"Print a bearer token for the document server."`

	Tui    system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit  habits.HabitCmd    `cmd:"" help:"Manage habits."`
	Goal   goals.GoalCmd      `cmd:"" help:"Manage goals."`
	Badges progress.BadgesCmd `cmd:"" help:"Show earned and locked badges."`
	Reset  progress.ResetCmd  `cmd:"" help:"Erase all habits, goals, history and badges."`
	Coach  coaching.CoachCmd  `cmd:"" help:"Ask the AI coach about your progress."`

	Remind   system.RemindCmd   `cmd:"" help:"Run habit reminders in the foreground."`
	Serve    system.ServeCmd    `cmd:"" help:"Serve the store to remote clients."`
	Config_  system.ConfigCmd   `cmd:"" name:"config" help:"Show or initialize the configuration."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage secrets in the OS keyring."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check saved data for problems."`
	Debug_   system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Notify   system.NotifyCmd   `cmd:"" hidden:"" help:"Send a test notification."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and goal tracker with streaks, badges and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(apperrors.WithHint(err, "fix the file or run 'streakly config init --force'")))
		os.Exit(1)
	}
	if CLI.Store != "" {
		cfg.Store = config.ExpandPath(CLI.Store)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
		Level:     cfg.Log.Level,
		Stderr:    strings.HasPrefix(command, "serve"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "command", command, "config", CLI.Config, "backend", cli.BackendFor(cfg.Store))

	appCtx := cli.NewContext(cfg, CLI.Config)
	apperrors.Fatal(ctx.Run(appCtx))
}
