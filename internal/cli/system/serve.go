package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/constants"
	apperrors "github.com/julianstephens/streakly/internal/errors"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/server"
)

// ServeCmd exposes the configured store over HTTP for remote clients.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	switch cli.BackendFor(ctx.Config.Store) {
	case cli.BackendLocal, cli.BackendRemote:
		return apperrors.WithHint(
			fmt.Errorf("cannot serve a %s store", cli.BackendFor(ctx.Config.Store)),
			"point store at a SQLite path or a PostgreSQL URL",
		)
	}

	secret := ctx.SecretFor(constants.KeyringUserSecret)
	if secret == "" {
		return apperrors.WithHint(errors.New("no server secret configured"), "run 'streakly keyring set server-secret' or set STREAKLY_SERVER_SECRET")
	}

	store, err := ctx.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	srv, err := server.New(store, []byte(secret))
	if err != nil {
		return err
	}

	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return srv.Run(gctx, addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down document server")
		return nil
	})

	ctx.Printf("Serving documents on %s. Press Ctrl+C to stop.\n", addr)
	return g.Wait()
}
