package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName           = "streakly"
	DefaultConfigDir  = "~/.config/streakly"
	DefaultConfigFile = "config.yaml"
	DefaultStorePath  = "~/.config/streakly/streakly.db"
	Version           = "v0.1.0"

	// Keyring entries
	KeyringUserSession  = "session"
	KeyringUserDBPass   = "database-password"
	KeyringUserSecret   = "server-secret"
	KeyringUserGenAIKey = "genai-api-key"

	// Sync constants
	DefaultSaveDebounce = 2 * time.Second
	DefaultTokenTTL     = 24 * time.Hour

	// Reminder constants
	DefaultReminderInterval = 10 * time.Second
	ReminderTitle           = "Habit reminder"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "streakly-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.streakly"
	TrayExecutablePrefix   = "streakly-tray"

	// Coach defaults
	DefaultCoachModel  = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultSpeechVoice = "Kore"

	// Server defaults
	DefaultServerAddr = ":8787"
)

// Session States
const (
	StateHabits SessionState = iota
	StateGoals
	StateBadges
	StateAddHabit
	StateAddGoal
	StateLogProgress
	StateConfirmDelete
	StateConfirmReset
	StateSignIn
)
