// Command specterctl drives a running specter console over its HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

const version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "specterctl",
		Usage:   "operate a specter token console",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "console base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"SPECTER_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "operator API key",
				EnvVars: []string{"SPECTER_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "otp",
				Usage: "current TOTP code, for operators with TOTP enabled",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print raw JSON instead of tables",
			},
		},
		Commands: []*cli.Command{
			tokensCommand(),
			importCommand(),
			resolveCommand(),
			audiencesCommand(),
			clientsCommand(),
			refreshCommand(),
			schedulerCommand(),
			totpCommand(),
			healthCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("[!] %s", err))
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *consolesdk.Client {
	client := consolesdk.NewClient(c.String("url"), c.String("api-key"))
	if otp := c.String("otp"); otp != "" {
		client = client.WithOTP(otp)
	}
	return client
}
