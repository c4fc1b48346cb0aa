package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/migration"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/storage/postgres"
	"github.com/julianstephens/streakly/internal/storage/sqlite"
	"github.com/julianstephens/streakly/internal/utils"
	"github.com/julianstephens/streakly/internal/validation"
	"github.com/julianstephens/streakly/migrations"
)

type DoctorCmd struct {
	SkipTray bool `help:"Skip the tray app check."`
}

type check struct {
	name string
	// warn marks checks whose failure does not fail the command.
	warn bool
	run  func() error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctx.Println("Running diagnostics...")
	ctx.Println()

	var (
		store storage.DocumentStore
		doc   *models.Document
	)
	storeErr := errors.New("store was not opened")

	checks := []check{
		{name: "Configuration", run: ctx.Config.Validate},
		{name: "Clock/timezone", run: func() error { return checkClock(ctx) }},
		{name: "OS keyring", warn: true, run: func() error {
			if !keyring.IsAvailable() {
				return keyring.ErrKeyringUnavailable
			}
			return nil
		}},
		{name: "Signed in", warn: true, run: func() error {
			_, err := ctx.Identity(bg)
			return err
		}},
		{name: "Store reachable", run: func() error {
			store, storeErr = ctx.OpenStore()
			if storeErr == nil && store == nil {
				return errors.New("no store configured; changes are kept in memory only")
			}
			return storeErr
		}},
		{name: "Schema version", run: func() error {
			if storeErr != nil || store == nil {
				return errSkipped
			}
			return checkSchema(store)
		}},
		{name: "Document readable", run: func() error {
			if storeErr != nil || store == nil {
				return errSkipped
			}
			var err error
			doc, err = readDocument(bg, ctx, store)
			return err
		}},
		{name: "Document valid", warn: true, run: func() error {
			if storeErr != nil || store == nil {
				return errSkipped
			}
			if doc == nil {
				return nil
			}
			result := validation.New().ValidateState(doc.Content)
			if result.HasConflicts() {
				return errors.New(strings.TrimSpace(result.FormatReport()))
			}
			return nil
		}},
	}
	if !cmd.SkipTray {
		checks = append(checks, check{name: "Tray app", warn: true, run: func() error {
			if notifier.NewTray(true).RequestPermission(bg) != notifier.PermissionGranted {
				return errors.New("no running tray app answered; reminders will not be shown")
			}
			return nil
		}})
	}

	hasError := false
	for _, c := range checks {
		err := c.run()
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (store not available)\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	if store != nil {
		store.Close()
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

var errSkipped = errors.New("skipped")

func checkClock(ctx *cli.Context) error {
	loc := ctx.Config.Location()
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	ctx.Printf("   today is %s in %s\n", utils.DateKey(now, loc), loc)
	return nil
}

func checkSchema(store storage.DocumentStore) error {
	var (
		db     *sql.DB
		driver migration.Driver
	)
	switch s := store.(type) {
	case *sqlite.Store:
		db, driver = s.GetDB(), migration.DriverSQLite
	case *postgres.Store:
		db, driver = s.GetDB(), migration.DriverPostgres
	default:
		// Remote stores manage their own schema.
		return nil
	}
	if db == nil {
		return errors.New("database connection is nil")
	}

	sub, err := fs.Sub(migrations.FS, string(driver))
	if err != nil {
		return err
	}
	runner := migration.NewRunner(db, sub, driver)
	if err := runner.ValidateVersion(); err != nil {
		return err
	}

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return err
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema is at version %d, latest is %d", current, latest)
	}
	return nil
}

// readDocument returns the signed-in user's document, or nil when there is no
// user or nothing has been saved yet.
func readDocument(bg context.Context, ctx *cli.Context, store storage.DocumentStore) (*models.Document, error) {
	id, err := ctx.Provider.Current(bg)
	if err != nil {
		return nil, nil
	}
	doc, err := store.Get(bg, id.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
