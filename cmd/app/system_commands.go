package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/diffrun/opsdesk/cmd/app/commands"
	"github.com/diffrun/opsdesk/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server, outbox worker and job scheduler",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					cfg := c.Config()
					return commands.RunMigrations(c.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "clean-webhook-events",
			Usage: "Delete webhook dedup records older than the retention window",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Usage:   "Delete records older than this many days (default: WEBHOOK_DEDUP_RETENTION_DAYS)",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many records would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.WebhookUseCase()
					if err != nil {
						return err
					}
					days := int(cmd.Int("days"))
					if !cmd.IsSet("days") {
						days = int(c.Config().WebhookDedupRetention.Hours() / 24)
					}
					return commands.RunCleanWebhookEvents(
						ctx,
						useCase,
						c.Logger(),
						commands.DefaultIO().Writer,
						days,
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "clean-outbox-events",
			Usage: "Delete processed outbox events older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   30,
					Usage:   "Delete processed events older than this many days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.OutboxUseCase()
					if err != nil {
						return err
					}
					return commands.RunCleanOutboxEvents(
						ctx,
						useCase,
						c.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("days")),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
