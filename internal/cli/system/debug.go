package system

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/logger"
)

type DebugCmd struct {
	Paths DebugPathsCmd `cmd:"" help:"Show config, store and log locations."`
	Dump  DebugDumpCmd  `cmd:"" help:"Dump the signed-in user's document as JSON."`
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	backend := cli.BackendFor(ctx.Config.Store)
	store := ctx.Config.Store
	if backend == cli.BackendPostgres || backend == cli.BackendRemote {
		// Connection strings may carry host and user details.
		store = string(backend)
	}

	output := map[string]string{
		"config":  ctx.ConfigPath,
		"store":   store,
		"backend": string(backend),
		"log":     logger.Path(filepath.Dir(ctx.ConfigPath)),
	}
	return writeJSON(ctx, output)
}

type DebugDumpCmd struct{}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	s, closeFn, err := ctx.OpenSession(context.Background(), nil)
	if err != nil {
		return err
	}
	defer closeFn()

	return writeJSON(ctx, s.State())
}

func writeJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
