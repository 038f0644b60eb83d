package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/diffrun/opsdesk/cmd/app/commands"
	"github.com/diffrun/opsdesk/internal/app"
)

func getJobCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "run-nudges",
			Usage: "Send the abandoned-checkout reminders due now",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.JobsUseCase()
					if err != nil {
						return err
					}
					return commands.RunNudgesJob(
						ctx, useCase, c.Logger(), commands.DefaultIO().Writer, time.Now().UTC(), cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "run-feedback-emails",
			Usage: "Enqueue feedback emails for recently delivered orders",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Usage:   "Maximum customers to email (default: FEEDBACK_BATCH_SIZE)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.JobsUseCase()
					if err != nil {
						return err
					}
					limit := int(cmd.Int("limit"))
					if !cmd.IsSet("limit") {
						limit = c.Config().FeedbackBatchSize
					}
					return commands.RunFeedbackJob(
						ctx, useCase, c.Logger(), commands.DefaultIO().Writer, time.Now().UTC(), limit, cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "run-reconcile",
			Usage: "Refresh stale shipments from the shipping partner",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.JobsUseCase()
					if err != nil {
						return err
					}
					return commands.RunReconcileJob(
						ctx, useCase, c.Logger(), commands.DefaultIO().Writer, time.Now().UTC(), cmd.String("format"),
					)
				})
			},
		},
	}
}
