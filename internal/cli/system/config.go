package system

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/streakly/internal/cli"
	"github.com/julianstephens/streakly/internal/config"
)

type ConfigCmd struct {
	Path ConfigPathCmd `cmd:"" help:"Print the config file path."`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
	Init ConfigInitCmd `cmd:"" help:"Write the default configuration file."`
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(ctx *cli.Context) error {
	ctx.Println(ctx.ConfigPath)
	return nil
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	shown := *ctx.Config
	if shown.Coach.APIKey != "" {
		shown.Coach.APIKey = "****"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	ctx.Printf("# %s\n%s", ctx.ConfigPath, data)
	return nil
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	if _, err := os.Stat(ctx.ConfigPath); err == nil && !c.Force {
		return errors.New("config file already exists at " + ctx.ConfigPath + " (use --force to overwrite)")
	}
	if err := config.DefaultConfig().Save(ctx.ConfigPath); err != nil {
		return err
	}
	ctx.Printf("✓ Wrote default configuration to %s\n", ctx.ConfigPath)
	return nil
}
