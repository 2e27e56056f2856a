package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func totpCommand() *cli.Command {
	return &cli.Command{
		Name:  "operator",
		Usage: "manage your own operator credentials",
		Subcommands: []*cli.Command{
			{
				Name:  "totp-enroll",
				Usage: "generate a TOTP secret",
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).EnrollTOTP(c.Context)
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						ok("secret %s", resp.Secret)
						info("%s", resp.URL)
						info("confirm with: specterctl operator totp-verify <code>")
					})
				},
			},
			{
				Name:      "totp-verify",
				Usage:     "confirm enrollment with a current code",
				ArgsUsage: "<code>",
				Action: func(c *cli.Context) error {
					code, err := requireArg(c, "code")
					if err != nil {
						return err
					}
					if err := newClient(c).VerifyTOTP(c.Context, code); err != nil {
						return err
					}
					ok("TOTP enabled; pass --otp on every call from now on")
					return nil
				},
			},
			{
				Name:  "rotate-key",
				Usage: "replace your API key",
				Action: func(c *cli.Context) error {
					key, err := newClient(c).RotateAPIKey(c.Context)
					if err != nil {
						return err
					}
					ok("new API key (the old one no longer works):")
					fmt.Println(key)
					return nil
				},
			},
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check the console is ready",
		Action: func(c *cli.Context) error {
			resp, err := newClient(c).GetReadiness(c.Context)
			if err != nil {
				return err
			}
			return emit(c, resp, func() {
				ok("%s %s up %s", resp.Status, resp.Version, resp.Uptime)
				if resp.Checks != nil {
					info("database %s, scheduler %s", resp.Checks.Database, resp.Checks.Scheduler)
				}
			})
		},
	}
}
