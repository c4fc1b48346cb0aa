package system

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/reducer"
)

type secrets map[string]string

func (m secrets) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m secrets) Set(key, value string) error { m[key] = value; return nil }

func (m secrets) Delete(key string) error { delete(m, key); return nil }

func setup(t *testing.T, store string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store = store
	cfg.Reminders.Enabled = false

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config:     cfg,
		ConfigPath: filepath.Join(dir, "config.yaml"),
		Provider:   auth.NewProviderWithStore(secrets{}),
		Out:        out,
		Secret:     func(string) string { return "" },
	}
	if _, err := ctx.Provider.SignIn("ada@example.com", "Ada"); err != nil {
		t.Fatal(err)
	}
	return ctx, out
}

func sqlitePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "streakly.db")
}

func TestConfigInitAndShow(t *testing.T) {
	ctx, out := setup(t, "")

	if err := (&ConfigInitCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(ctx.ConfigPath); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if err := (&ConfigInitCmd{}).Run(ctx); err == nil {
		t.Error("expected an error when the file exists")
	}
	if err := (&ConfigInitCmd{Force: true}).Run(ctx); err != nil {
		t.Errorf("--force should overwrite: %v", err)
	}

	out.Reset()
	if err := (&ConfigPathCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != ctx.ConfigPath {
		t.Errorf("unexpected path output %q", out.String())
	}

	out.Reset()
	ctx.Config.Coach.APIKey = "AIza-secret"
	if err := (&ConfigShowCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "AIza-secret") || !strings.Contains(out.String(), "****") {
		t.Errorf("api key should be masked:\n%s", out.String())
	}
	if ctx.Config.Coach.APIKey != "AIza-secret" {
		t.Error("show must not modify the loaded config")
	}
}

func TestKeyringCommands(t *testing.T) {
	ctx, out := setup(t, "")

	orig := promptSecret
	promptSecret = func(string) (string, error) { return " prompted \n", nil }
	t.Cleanup(func() { promptSecret = orig })

	if err := (&KeyringSetCmd{Key: constants.KeyringUserSecret}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := keyring.Get(constants.KeyringUserSecret); got != "prompted" {
		t.Errorf("expected trimmed prompt value, got %q", got)
	}

	if err := (&KeyringSetCmd{Key: constants.KeyringUserDBPass, Value: "pw"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"✓ server-secret is stored", "✓ database-password is stored", "ℹ genai-api-key is not stored"} {
		if !strings.Contains(got, want) {
			t.Errorf("status output missing %q:\n%s", want, got)
		}
	}

	if err := (&KeyringDeleteCmd{Key: constants.KeyringUserDBPass}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyringDeleteCmd{Key: constants.KeyringUserDBPass}).Run(ctx); err == nil {
		t.Error("deleting a missing secret should fail")
	}

	err := (&KeyringSetCmd{Key: "session", Value: "x"}).Run(ctx)
	if err == nil || !strings.Contains(apperrors.Hint(err), "genai-api-key") {
		t.Errorf("expected unknown key error with hint, got %v", err)
	}
}

func TestNotifyDryRun(t *testing.T) {
	ctx, out := setup(t, "")
	if err := (&NotifyCmd{Title: "⏰ Habit reminder", Body: "Time to read", DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "⏰ Habit reminder: Time to read") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestDebugPathsHidesConnectionStrings(t *testing.T) {
	ctx, out := setup(t, "postgres://ada@db.internal:5432/streakly")
	if err := (&DebugPathsCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	var paths map[string]string
	if err := json.Unmarshal(out.Bytes(), &paths); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if paths["store"] != "postgres" || paths["backend"] != "postgres" {
		t.Errorf("unexpected store fields: %v", paths)
	}
	if paths["config"] != ctx.ConfigPath {
		t.Errorf("config = %q, want %q", paths["config"], ctx.ConfigPath)
	}
	if !strings.HasSuffix(paths["log"], filepath.Join("logs", "streakly.log")) {
		t.Errorf("unexpected log path %q", paths["log"])
	}
}

func TestDebugDump(t *testing.T) {
	ctx, out := setup(t, sqlitePath(t))

	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.AddHabit(reducer.NewHabit{Title: "Stretch"})
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	if err := (&DebugDumpCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	var state models.AppState
	if err := json.Unmarshal(out.Bytes(), &state); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if len(state.Habits) != 1 || state.Habits[0].Title != "Stretch" {
		t.Errorf("unexpected habits: %+v", state.Habits)
	}
	if len(state.EarnedBadges) != 1 || state.EarnedBadges[0] != "first_step" {
		t.Errorf("unexpected badges: %v", state.EarnedBadges)
	}
}

func TestDoctorOnSQLite(t *testing.T) {
	ctx, out := setup(t, sqlitePath(t))

	if err := (&DoctorCmd{SkipTray: true}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}
	got := out.String()
	for _, want := range []string{"✓ Store reachable: OK", "✓ Schema version: OK", "✓ Document readable: OK", "All diagnostics passed!"} {
		if !strings.Contains(got, want) {
			t.Errorf("doctor output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Tray app") {
		t.Errorf("--skip-tray should skip the tray check:\n%s", got)
	}
}

func TestDoctorWithoutStore(t *testing.T) {
	ctx, out := setup(t, "")

	if err := (&DoctorCmd{SkipTray: true}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail without a store")
	}
	got := out.String()
	if !strings.Contains(got, "❌ Store reachable: FAIL") || !strings.Contains(got, "⊘ Schema version: SKIPPED") {
		t.Errorf("unexpected doctor output:\n%s", got)
	}
}

func TestServeRejectsUnsupportedBackends(t *testing.T) {
	for _, store := range []string{"", "https://streakly.example.com"} {
		ctx, _ := setup(t, store)
		if err := (&ServeCmd{}).Run(ctx); err == nil {
			t.Errorf("serve should refuse store %q", store)
		}
	}
}

func TestRemindRequiresReminders(t *testing.T) {
	ctx, _ := setup(t, sqlitePath(t))
	if err := (&RemindCmd{Console: true}).Run(ctx); err == nil {
		t.Fatal("expected an error while reminders are disabled")
	}
}

func TestValidateReportsWarnings(t *testing.T) {
	ctx, out := setup(t, sqlitePath(t))

	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.AddHabit(reducer.NewHabit{Title: "Stretch"})
	s.AddHabit(reducer.NewHabit{Title: "stretch"})
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("duplicate titles are warnings only: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Duplicate habit title") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
