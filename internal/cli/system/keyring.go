package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakly/internal/cli"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/keyring"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Show which secrets are stored." default:"1"`
}

func checkKey(key string) error {
	if keyring.IsManagedKey(key) {
		return nil
	}
	return apperrors.WithHint(fmt.Errorf("unknown secret %q", key), "expected one of: "+strings.Join(keyring.ManagedKeys, ", "))
}

// promptSecret is replaced in tests.
var promptSecret = func(key string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(fmt.Sprintf("Value for %s", key)).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()
	return value, err
}

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Key   string `arg:"" help:"database-password, server-secret or genai-api-key."`
	Value string `arg:"" optional:"" help:"Secret value. Prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if err := checkKey(cmd.Key); err != nil {
		return err
	}

	value := cmd.Value
	if value == "" {
		var err error
		if value, err = promptSecret(cmd.Key); err != nil {
			return err
		}
	}

	if err := keyring.Set(cmd.Key, strings.TrimSpace(value)); err != nil {
		return err
	}
	ctx.Printf("✓ %s stored in OS keyring\n", cmd.Key)
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Key string `arg:"" help:"database-password, server-secret or genai-api-key."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := checkKey(cmd.Key); err != nil {
		return err
	}
	if err := keyring.Delete(cmd.Key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", cmd.Key)
		}
		return err
	}
	ctx.Printf("✓ %s deleted from OS keyring\n", cmd.Key)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}

	ctx.Println("✓ OS keyring is available")
	for _, key := range keyring.ManagedKeys {
		if _, err := keyring.Get(key); err == nil {
			ctx.Printf("✓ %s is stored\n", key)
		} else {
			ctx.Printf("ℹ %s is not stored\n", key)
		}
	}
	return nil
}
