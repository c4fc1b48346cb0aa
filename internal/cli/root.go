package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/achievements"
	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/keyring"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/notifier"
	"github.com/julianstephens/streakly/internal/session"
	"github.com/julianstephens/streakly/internal/storage"
	"github.com/julianstephens/streakly/internal/storage/postgres"
	"github.com/julianstephens/streakly/internal/storage/remote"
	"github.com/julianstephens/streakly/internal/storage/sqlite"
)

// flushTimeout bounds the final save of a one-shot command.
const flushTimeout = 30 * time.Second

type Context struct {
	Config     *config.Config
	ConfigPath string
	Provider   *auth.KeyringProvider
	In         io.Reader
	Out        io.Writer
	// Secret resolves a managed secret. Defaults to LookupSecret.
	Secret func(key string) string
}

func NewContext(cfg *config.Config, configPath string) *Context {
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Provider:   auth.NewKeyringProvider(),
		In:         os.Stdin,
		Out:        os.Stdout,
	}
}

// secretEnv maps keyring entries to the environment variable that overrides them.
var secretEnv = map[string]string{
	constants.KeyringUserDBPass:   "STREAKLY_DB_PASSWORD",
	constants.KeyringUserSecret:   "STREAKLY_SERVER_SECRET",
	constants.KeyringUserGenAIKey: "STREAKLY_GENAI_API_KEY",
}

// LookupSecret returns the environment override for key, falling back to the OS keyring.
func LookupSecret(key string) string {
	if env, ok := secretEnv[key]; ok {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return keyring.Lookup(key)
}

// SecretFor resolves key through the Secret override or LookupSecret.
func (c *Context) SecretFor(key string) string {
	if c.Secret != nil {
		return c.Secret(key)
	}
	return LookupSecret(key)
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

type Backend string

const (
	BackendLocal    Backend = "local"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRemote   Backend = "remote"
)

// BackendFor classifies a store setting.
func BackendFor(store string) Backend {
	switch {
	case strings.TrimSpace(store) == "":
		return BackendLocal
	case strings.HasPrefix(store, "postgres://"), strings.HasPrefix(store, "postgresql://"), strings.Contains(store, "host="):
		return BackendPostgres
	case strings.HasPrefix(store, "http://"), strings.HasPrefix(store, "https://"):
		return BackendRemote
	default:
		return BackendSQLite
	}
}

// OpenStore opens the configured document store. A nil store with a nil error
// means state is kept in memory only.
func (c *Context) OpenStore() (storage.DocumentStore, error) {
	url := c.Config.Store
	switch BackendFor(url) {
	case BackendLocal:
		return nil, nil

	case BackendPostgres:
		if _, err := postgres.ValidateConnString(url); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, apperrors.WithHint(err, "store the password with 'streakly keyring set database-password' or set STREAKLY_DB_PASSWORD")
			}
			return nil, err
		}
		store := postgres.New(url).WithPassword(c.SecretFor(constants.KeyringUserDBPass))
		if err := store.Init(); err != nil {
			return nil, err
		}
		return store, nil

	case BackendRemote:
		secret := c.SecretFor(constants.KeyringUserSecret)
		if secret == "" {
			return nil, apperrors.WithHint(errors.New("no server secret configured"), "run 'streakly keyring set server-secret' with the secret the server uses")
		}
		return remote.New(url, c.tokenFunc([]byte(secret))), nil

	default:
		store := sqlite.NewStore(config.ExpandPath(url))
		if err := store.Init(); err != nil {
			return nil, err
		}
		return store, nil
	}
}

// tokenFunc signs short-lived tokens for the signed-in user.
func (c *Context) tokenFunc(secret []byte) remote.TokenFunc {
	return func(ctx context.Context, userID string) (string, error) {
		id, err := c.Provider.Current(ctx)
		if err != nil {
			return "", err
		}
		if id.UserID != userID {
			return "", fmt.Errorf("cannot sign a token for %s while signed in as %s", userID, id.UserID)
		}
		return auth.IssueToken(secret, *id, 5*time.Minute)
	}
}

// SessionOptions builds the options for id's session on store. A nil notifier disables reminders.
func (c *Context) SessionOptions(id auth.Identity, store storage.DocumentStore, n notifier.Capability) session.Options {
	opts := session.Options{
		Identity:         id,
		Store:            store,
		Location:         c.Config.Location(),
		SaveDelay:        c.Config.SaveDebounce(),
		ReminderInterval: c.Config.ReminderInterval(),
	}
	if n != nil && c.Config.Reminders.Enabled {
		opts.Notifier = n
	}
	return opts
}

// Identity returns the signed-in user or a hinted ErrSignedOut.
func (c *Context) Identity(ctx context.Context) (*auth.Identity, error) {
	id, err := c.Provider.Current(ctx)
	if errors.Is(err, auth.ErrSignedOut) {
		return nil, apperrors.WithHint(err, "run 'streakly login <email>' first")
	}
	return id, err
}

// OpenSession starts a session for the signed-in user. One-shot commands refuse
// to run on a failed load, since their save would replace the stored document.
// The returned close function flushes the pending save and releases the store.
func (c *Context) OpenSession(ctx context.Context, n notifier.Capability) (*session.Session, func() error, error) {
	id, err := c.Identity(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, err := c.OpenStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	s := session.New(c.SessionOptions(*id, store, n))
	if err := s.Start(ctx); err != nil {
		s.Close()
		closeStore(store)
		return nil, nil, apperrors.WithHint(fmt.Errorf("failed to load saved data: %w", err), "run 'streakly doctor' to check the store")
	}

	closeFn := func() error {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
		err := s.Flush(flushCtx)
		s.Close()
		closeStore(store)
		return err
	}
	return s, closeFn, nil
}

func closeStore(store storage.DocumentStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
}

// ReportSpotlight prints the badge a mutation unlocked, if any.
func (c *Context) ReportSpotlight(b *achievements.Badge) {
	if b == nil {
		return
	}
	c.Printf("%s Badge unlocked: %s (%s)\n", b.Icon, b.Title, b.Description)
}
