package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "redeem refresh tokens",
		Subcommands: []*cli.Command{
			{
				Name:      "use",
				Usage:     "redeem a refresh token, optionally as another family client",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "client-id", Usage: "client to redeem as (default: the token's own)"},
					&cli.StringFlag{Name: "scope", Usage: "resource URL or scope (default: Graph)"},
					&cli.BoolFlag{Name: "activate"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					resp, err := newClient(c).UseRefreshToken(c.Context, id, consolesdk.UseRefreshRequest{
						ClientID: c.String("client-id"),
						Scope:    c.String("scope"),
						Activate: c.Bool("activate"),
					})
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						ok("minted %s for %s (%s), expires in %ds", resp.Token.ID, resp.Token.Audience, resp.Token.ClientName, resp.ExpiresIn)
						if resp.Rotated {
							info("the provider rotated the refresh token")
						}
					})
				},
			},
			{
				Name:      "targets",
				Usage:     "list family clients a refresh token can be redeemed as",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					resp, err := newClient(c).FOCITargets(c.Context, id)
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						w := table()
						for _, t := range resp.Targets {
							name := t.DisplayName
							if t.IsCurrent {
								name = color.GreenString("%s (current)", name)
							}
							fmt.Fprintf(w, "%s\t%s\t\n", t.ClientID, name)
						}
						_ = w.Flush()
					})
				},
			},
			{
				Name:  "stats",
				Usage: "refresh token usage",
				Action: func(c *cli.Context) error {
					stats, err := newClient(c).RefreshStats(c.Context)
					if err != nil {
						return err
					}
					return emit(c, stats, func() {
						info("%d refresh tokens, %d FOCI, %d used, %d unused", stats.Total, stats.FOCI, stats.Used, stats.Unused)
					})
				},
			},
		},
	}
}
