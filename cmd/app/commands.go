package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/diffrun/opsdesk/internal/app"
	"github.com/diffrun/opsdesk/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getAuthCommands()...)
	cmds = append(cmds, getJobCommands()...)
	return cmds
}

// withContainer loads and unseals the configuration, builds a container and
// releases it once fn returns.
func withContainer(ctx context.Context, fn func(c *app.Container) error) error {
	cfg := config.Load()
	if err := config.Unseal(ctx, cfg); err != nil {
		return err
	}
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
