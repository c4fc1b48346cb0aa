// Package config loads streakly's YAML settings, layered with .env files and STREAKLY_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/streakly/internal/constants"
	"github.com/julianstephens/streakly/internal/utils"
)

type Config struct {
	// Store is a SQLite path, a postgres:// URL, or an http(s):// document server.
	// Empty keeps state in memory only.
	Store     string         `yaml:"store"`
	Timezone  string         `yaml:"timezone"`
	Sync      SyncConfig     `yaml:"sync"`
	Reminders ReminderConfig `yaml:"reminders"`
	Coach     CoachConfig    `yaml:"coach"`
	Server    ServerConfig   `yaml:"server"`
	Log       LogConfig      `yaml:"log"`
}

type SyncConfig struct {
	Debounce string `yaml:"debounce"`
}

type ReminderConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

type CoachConfig struct {
	APIKey      string `yaml:"api_key,omitempty"`
	Model       string `yaml:"model"`
	SpeechModel string `yaml:"speech_model"`
	Voice       string `yaml:"voice"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	TokenTTL string `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Store:    constants.DefaultStorePath,
		Timezone: "Local",
		Sync: SyncConfig{
			Debounce: constants.DefaultSaveDebounce.String(),
		},
		Reminders: ReminderConfig{
			Enabled:  true,
			Interval: constants.DefaultReminderInterval.String(),
		},
		Coach: CoachConfig{
			Model:       constants.DefaultCoachModel,
			SpeechModel: constants.DefaultSpeechModel,
			Voice:       constants.DefaultSpeechVoice,
		},
		Server: ServerConfig{
			Addr:     constants.DefaultServerAddr,
			TokenTTL: constants.DefaultTokenTTL.String(),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath is ~/.config/streakly/config.yaml, expanded.
func DefaultPath() string {
	return ExpandPath(filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile))
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load reads path (missing file means defaults), then .env files, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	cfg.applyEnvOverrides()
	cfg.Store = ExpandPath(cfg.Store)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads each file that exists. Variables already set win.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("STREAKLY_STORE"); ok {
		c.Store = v
	}
	if v := os.Getenv("STREAKLY_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("STREAKLY_SYNC_DEBOUNCE"); v != "" {
		c.Sync.Debounce = v
	}
	if v := os.Getenv("STREAKLY_REMINDERS"); v != "" {
		c.Reminders.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("STREAKLY_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STREAKLY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	// GEMINI_API_KEY is the SDK's own variable; the prefixed one wins.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Coach.APIKey = v
	}
	if v := os.Getenv("STREAKLY_GENAI_API_KEY"); v != "" {
		c.Coach.APIKey = v
	}
}

// Validate checks durations and the timezone.
func (c *Config) Validate() error {
	var errs []error
	if _, err := time.ParseDuration(c.Sync.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("sync.debounce: %w", err))
	}
	if d, err := time.ParseDuration(c.Reminders.Interval); err != nil {
		errs = append(errs, fmt.Errorf("reminders.interval: %w", err))
	} else if d > time.Minute {
		errs = append(errs, fmt.Errorf("reminders.interval: %s would miss minutes (max 1m)", d))
	}
	if _, err := time.ParseDuration(c.Server.TokenTTL); err != nil {
		errs = append(errs, fmt.Errorf("server.token_ttl: %w", err))
	}
	if !utils.ValidateTimezone(c.Timezone) {
		errs = append(errs, fmt.Errorf("timezone: unknown location %q", c.Timezone))
	}
	return errors.Join(errs...)
}

func (c *Config) SaveDebounce() time.Duration {
	return parseOr(c.Sync.Debounce, constants.DefaultSaveDebounce)
}

func (c *Config) ReminderInterval() time.Duration {
	return parseOr(c.Reminders.Interval, constants.DefaultReminderInterval)
}

func (c *Config) TokenTTL() time.Duration {
	return parseOr(c.Server.TokenTTL, constants.DefaultTokenTTL)
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
