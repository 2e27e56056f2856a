package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "get a usable access token for an audience, exchanging if needed",
		ArgsUsage: "<audience-url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "upn", Usage: "identity to resolve for (default: the active token's)"},
			&cli.BoolFlag{Name: "reveal", Usage: "print the access token"},
		},
		Action: func(c *cli.Context) error {
			audience, err := requireArg(c, "audience")
			if err != nil {
				return err
			}
			resp, err := newClient(c).Resolve(c.Context, consolesdk.ResolveRequest{
				Audience: audience,
				UPN:      c.String("upn"),
				Reveal:   c.Bool("reveal"),
			})
			if err != nil {
				var apiErr *consolesdk.APIError
				if errors.As(err, &apiErr) && len(apiErr.Candidates) > 0 {
					warn("no token for this identity; other identities hold one:")
					for _, cand := range apiErr.Candidates {
						fmt.Printf("    %s  %s\n", cand.TokenID, cand.UPN)
					}
				}
				return err
			}
			return emit(c, resp, func() {
				ok("%s token %s for %s via %s", resp.Audience, resp.TokenID, resp.UPN, resp.Via)
				if resp.AccessToken != "" {
					fmt.Println(resp.AccessToken)
				}
			})
		},
	}
}

func audiencesCommand() *cli.Command {
	return &cli.Command{
		Name:  "audiences",
		Usage: "show which well-known audiences an identity can reach",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "upn"},
		},
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).ListAudiences(c.Context, c.String("upn"))
			if err != nil {
				return err
			}
			return emit(c, resp, func() {
				info("%s (FOCI refresh token: %t)", resp.UPN, resp.FOCIAvailable)
				w := table()
				fmt.Fprintln(w, "AUDIENCE\tRESOURCE\tSTATUS\t")
				for _, a := range resp.Audiences {
					status := color.GreenString("token %s", a.TokenID)
					if !a.Available {
						status = color.YellowString("%s", a.Reason)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t\n", a.Key, a.Resource, status)
				}
				_ = w.Flush()
			})
		},
		Subcommands: []*cli.Command{
			{
				Name:  "me",
				Usage: "fetch the identity's Graph profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "upn"},
				},
				Action: func(c *cli.Context) error {
					me, err := newClient(c).GraphMe(c.Context, c.String("upn"))
					if err != nil {
						return err
					}
					return emit(c, me, func() {
						for _, key := range []string{"displayName", "userPrincipalName", "mail", "jobTitle", "id"} {
							if v, ok := me[key]; ok && v != nil {
								fmt.Printf("%-18s %v\n", key, v)
							}
						}
					})
				},
			},
			{
				Name:  "clear-cache",
				Usage: "drop cached API responses",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "upn", Usage: "limit to one identity"},
				},
				Action: func(c *cli.Context) error {
					if err := newClient(c).ClearCache(c.Context, c.String("upn")); err != nil {
						return err
					}
					ok("cache cleared")
					return nil
				},
			},
		},
	}
}

func clientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "clients",
		Usage: "list known first-party client IDs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "foci", Usage: "only family-of-client-IDs members"},
		},
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).ListClients(c.Context, c.Bool("foci"))
			if err != nil {
				return err
			}
			return emit(c, resp, func() {
				w := table()
				fmt.Fprintln(w, "CLIENT ID\tNAME\tFOCI\t")
				for _, cl := range resp.Clients {
					fmt.Fprintf(w, "%s\t%s\t%t\t\n", cl.ClientID, cl.DisplayName, cl.FOCI)
				}
				_ = w.Flush()
				info("%d clients, %d in the family", resp.Count, resp.FOCI)
			})
		},
	}
}
