package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STREAKLY_STORE", "STREAKLY_TIMEZONE", "STREAKLY_SYNC_DEBOUNCE", "STREAKLY_REMINDERS",
		"STREAKLY_SERVER_ADDR", "STREAKLY_LOG_LEVEL", "GEMINI_API_KEY", "STREAKLY_GENAI_API_KEY",
	} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SaveDebounce() != 2*time.Second {
		t.Errorf("expected 2s debounce, got %s", cfg.SaveDebounce())
	}
	if cfg.ReminderInterval() != 10*time.Second {
		t.Errorf("expected 10s reminder interval, got %s", cfg.ReminderInterval())
	}
	if !cfg.Reminders.Enabled {
		t.Error("expected reminders enabled by default")
	}
	if strings.HasPrefix(cfg.Store, "~") {
		t.Errorf("expected store path to be expanded, got %q", cfg.Store)
	}
	if cfg.Location() != time.Local {
		t.Errorf("expected local timezone")
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Store = "postgres://db.example.com/streakly"
	cfg.Timezone = "America/New_York"
	cfg.Sync.Debounce = "5s"
	cfg.Coach.Voice = "Puck"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Store != cfg.Store {
		t.Errorf("store: got %q", loaded.Store)
	}
	if loaded.SaveDebounce() != 5*time.Second {
		t.Errorf("debounce: got %s", loaded.SaveDebounce())
	}
	if loaded.Coach.Voice != "Puck" {
		t.Errorf("voice: got %q", loaded.Coach.Voice)
	}
	if loaded.Location().String() != "America/New_York" {
		t.Errorf("location: got %s", loaded.Location())
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store: \"\"\nreminders:\n  enabled: false\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store != "" {
		t.Errorf("expected empty store, got %q", cfg.Store)
	}
	if cfg.Reminders.Enabled {
		t.Error("expected reminders disabled")
	}
	if cfg.ReminderInterval() != 10*time.Second {
		t.Errorf("expected default interval, got %s", cfg.ReminderInterval())
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAKLY_STORE", "https://sync.example.com")
	t.Setenv("STREAKLY_SYNC_DEBOUNCE", "750ms")
	t.Setenv("GEMINI_API_KEY", "from-sdk-var")
	t.Setenv("STREAKLY_GENAI_API_KEY", "from-prefixed-var")
	t.Setenv("STREAKLY_REMINDERS", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store != "https://sync.example.com" {
		t.Errorf("store: got %q", cfg.Store)
	}
	if cfg.SaveDebounce() != 750*time.Millisecond {
		t.Errorf("debounce: got %s", cfg.SaveDebounce())
	}
	if cfg.Coach.APIKey != "from-prefixed-var" {
		t.Errorf("api key: got %q", cfg.Coach.APIKey)
	}
	if cfg.Reminders.Enabled {
		t.Error("expected reminders disabled by env")
	}
}

func TestDotEnvBesideConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STREAKLY_SERVER_ADDR=127.0.0.1:9999\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("STREAKLY_SERVER_ADDR") })

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr from .env, got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad debounce", func(c *Config) { c.Sync.Debounce = "soon" }, "sync.debounce"},
		{"interval too long", func(c *Config) { c.Reminders.Interval = "2m" }, "reminders.interval"},
		{"bad ttl", func(c *Config) { c.Server.TokenTTL = "forever" }, "server.token_ttl"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x/y.db"); got != filepath.Join(home, "x/y.db") {
		t.Errorf("got %q", got)
	}
	if got := ExpandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("got %q", got)
	}
	if got := ExpandPath("postgres://h/db"); got != "postgres://h/db" {
		t.Errorf("got %q", got)
	}
}
