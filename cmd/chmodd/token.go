package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print a signed identity token for the serve command",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User name placed in the token subject",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Group carried by the token; repeatable",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			tokens, err := newTokenManager(cfg)
			if err != nil {
				return cli.Exit(err, 1)
			}

			token, err := tokens.CreateIdentity(c.String("user"), c.StringSlice("group"))
			if err != nil {
				return cli.Exit(fmt.Errorf("error signing token: %w", err), 1)
			}
			fmt.Println(token)
			return nil
		},
	}
}
