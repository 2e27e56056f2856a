package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "tokens",
		Usage: "inspect and manage the token pool",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list stored tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kind", Usage: "access_token, refresh_token, id_token or prt"},
					&cli.StringFlag{Name: "upn"},
					&cli.StringFlag{Name: "audience"},
					&cli.StringFlag{Name: "client-id"},
					&cli.BoolFlag{Name: "active-only", Usage: "hide expired tokens"},
					&cli.IntFlag{Name: "limit"},
				},
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).ListTokens(c.Context, consolesdk.ListTokensOptions{
						Kind:       c.String("kind"),
						UPN:        c.String("upn"),
						Audience:   c.String("audience"),
						ClientID:   c.String("client-id"),
						ActiveOnly: c.Bool("active-only"),
						Limit:      c.Int("limit"),
					})
					if err != nil {
						return err
					}
					return emit(c, resp, func() { printTokens(resp.Tokens) })
				},
			},
			{
				Name:      "show",
				Usage:     "show one token",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "full", Usage: "reveal the complete secret"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					tok, err := newClient(c).GetToken(c.Context, id, c.Bool("full"))
					if err != nil {
						return err
					}
					return emit(c, tok, func() { printToken(tok) })
				},
			},
			{
				Name:  "active",
				Usage: "show the active token",
				Action: func(c *cli.Context) error {
					tok, err := newClient(c).GetActiveToken(c.Context)
					if err != nil {
						return err
					}
					return emit(c, tok, func() { printToken(tok) })
				},
			},
			{
				Name:      "activate",
				Usage:     "make a token the active context",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					tok, err := newClient(c).ActivateToken(c.Context, id)
					if err != nil {
						return err
					}
					return emit(c, tok, func() { ok("active context is now %s (%s)", tok.ID, tok.UPN) })
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a token",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, "id")
					if err != nil {
						return err
					}
					if err := newClient(c).DeleteToken(c.Context, id); err != nil {
						return err
					}
					ok("deleted %s", id)
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "delete expired tokens that carry no refresh token",
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).DeleteExpired(c.Context)
					if err != nil {
						return err
					}
					return emit(c, resp, func() { ok("deleted %d expired tokens", resp.Deleted) })
				},
			},
			{
				Name:  "stats",
				Usage: "summarise the token pool",
				Action: func(c *cli.Context) error {
					stats, err := newClient(c).TokenStats(c.Context)
					if err != nil {
						return err
					}
					return emit(c, stats, func() {
						w := table()
						fmt.Fprintf(w, "total\t%d\n", stats.Total)
						for kind, n := range stats.ByKind {
							fmt.Fprintf(w, "  %s\t%d\n", kind, n)
						}
						fmt.Fprintf(w, "expired\t%d\n", stats.Expired)
						fmt.Fprintf(w, "refresh used\t%d\n", stats.RefreshUsed)
						fmt.Fprintf(w, "refresh unused\t%d\n", stats.RefreshUnused)
						_ = w.Flush()
					})
				},
			},
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "load captured tokens into the pool",
		Subcommands: []*cli.Command{
			{
				Name:      "broker",
				Usage:     "import a broker cache export",
				ArgsUsage: "<file.json>",
				Action: func(c *cli.Context) error {
					path, err := requireArg(c, "file.json")
					if err != nil {
						return err
					}
					f, err := os.Open(path)
					if err != nil {
						return err
					}
					defer f.Close()

					resp, err := newClient(c).ImportBroker(c.Context, f, filepath.Base(path))
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						ok("%s", resp.Message)
						info("imported %d, skipped %d (%d expired, %d duplicates)",
							resp.Imported, resp.Skipped, resp.Expired, resp.Duplicates)
						for key, msg := range resp.Errors {
							warn("%s: %s", key, msg)
						}
					})
				},
			},
			{
				Name:  "jwt",
				Usage: "import a raw access token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "access-token", Required: true},
					&cli.StringFlag{Name: "refresh-token"},
					&cli.StringFlag{Name: "client-id"},
					&cli.BoolFlag{Name: "activate"},
				},
				Action: func(c *cli.Context) error {
					tok, err := newClient(c).ImportJWT(c.Context, consolesdk.ImportJWTRequest{
						AccessToken:  c.String("access-token"),
						RefreshToken: c.String("refresh-token"),
						ClientID:     c.String("client-id"),
						Activate:     c.Bool("activate"),
					})
					if err != nil {
						return err
					}
					return emit(c, tok, func() { ok("imported %s for %s (%s)", tok.ID, tok.UPN, tok.Audience) })
				},
			},
			{
				Name:  "refresh",
				Usage: "import a bare refresh token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "refresh-token", Required: true},
					&cli.StringFlag{Name: "client-id", Required: true},
					&cli.StringFlag{Name: "upn"},
					&cli.StringFlag{Name: "tenant-id"},
					&cli.BoolFlag{Name: "prt-bound"},
				},
				Action: func(c *cli.Context) error {
					tok, err := newClient(c).ImportRefresh(c.Context, consolesdk.ImportRefreshRequest{
						RefreshToken: c.String("refresh-token"),
						ClientID:     c.String("client-id"),
						UPN:          c.String("upn"),
						TenantID:     c.String("tenant-id"),
						PRTBound:     c.Bool("prt-bound"),
					})
					if err != nil {
						return err
					}
					return emit(c, tok, func() { ok("imported refresh token %s", tok.ID) })
				},
			},
		},
	}
}
