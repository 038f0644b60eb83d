package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/diffrun/opsdesk/cmd/app/commands"
	"github.com/diffrun/opsdesk/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-operator",
			Usage: "Create an admin operator and print its secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Operator email address",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.OperatorUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateOperator(
						ctx,
						useCase,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("email"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete operator tokens that expired more than specified days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   0,
					Usage:   "Delete tokens expired for at least this many days",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(c *app.Container) error {
					useCase, err := c.TokenUseCase()
					if err != nil {
						return err
					}
					return commands.RunCleanExpiredTokens(
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
