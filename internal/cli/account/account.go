package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakly/internal/auth"
	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
)

type LoginCmd struct {
	Email string `arg:"" help:"Email address to sign in as."`
	Name  string `help:"Display name (defaults to the part of the email before @)."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	prev, _ := ctx.Provider.Current(context.Background())

	name := c.Name
	if name == "" {
		name, _, _ = strings.Cut(c.Email, "@")
	}
	id, err := ctx.Provider.SignIn(c.Email, name)
	if err != nil {
		return apperrors.WithHint(err, "use a full address such as ada@example.com")
	}

	if prev != nil && prev.UserID != id.UserID {
		ctx.Printf("Switched from %s to %s\n", prev.Email, id.Email)
		return nil
	}
	ctx.Printf("✓ Signed in as %s (%s)\n", id.DisplayName, id.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Provider.SignOut(); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Provider.Current(context.Background())
	if errors.Is(err, auth.ErrSignedOut) {
		ctx.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}

	ctx.Printf("Name:    %s\n", id.DisplayName)
	ctx.Printf("Email:   %s\n", id.Email)
	ctx.Printf("User ID: %s\n", id.UserID)
	backend := cli.BackendFor(ctx.Config.Store)
	ctx.Printf("Store:   %s\n", backend)
	if backend == cli.BackendLocal {
		ctx.Println("         changes are not saved between runs")
	}
	return nil
}

// TokenCmd prints a bearer token for calling the document server directly.
type TokenCmd struct {
	TTL time.Duration `help:"Token lifetime (defaults to server.token_ttl)."`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Identity(context.Background())
	if err != nil {
		return err
	}

	secret := ctx.SecretFor(constants.KeyringUserSecret)
	if secret == "" {
		return apperrors.WithHint(errors.New("no server secret configured"), "run 'streakly keyring set server-secret'")
	}

	ttl := c.TTL
	if ttl <= 0 {
		ttl = ctx.Config.TokenTTL()
	}
	token, err := auth.IssueToken([]byte(secret), *id, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	ctx.Println(token)
	return nil
}
