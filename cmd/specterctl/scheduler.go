package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

func schedulerCommand() *cli.Command {
	status := func(call func(*consolesdk.Client, *cli.Context) (*consolesdk.SchedulerStatus, error)) cli.ActionFunc {
		return func(c *cli.Context) error {
			s, err := call(newClient(c), c)
			if err != nil {
				return err
			}
			return emit(c, s, func() { printSchedulerStatus(s) })
		}
	}

	return &cli.Command{
		Name:  "scheduler",
		Usage: "control the token freshness scheduler",
		Subcommands: []*cli.Command{
			{
				Name: "status",
				Action: status(func(cl *consolesdk.Client, c *cli.Context) (*consolesdk.SchedulerStatus, error) {
					return cl.SchedulerStatus(c.Context)
				}),
			},
			{
				Name: "start",
				Action: status(func(cl *consolesdk.Client, c *cli.Context) (*consolesdk.SchedulerStatus, error) {
					return cl.StartScheduler(c.Context)
				}),
			},
			{
				Name: "stop",
				Action: status(func(cl *consolesdk.Client, c *cli.Context) (*consolesdk.SchedulerStatus, error) {
					return cl.StopScheduler(c.Context)
				}),
			},
			{
				Name:  "config",
				Usage: "change the poll interval or expiry threshold",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "interval", Usage: "minutes between ticks"},
					&cli.Float64Flag{Name: "threshold", Usage: "refresh tokens expiring within this many minutes"},
				},
				Action: status(func(cl *consolesdk.Client, c *cli.Context) (*consolesdk.SchedulerStatus, error) {
					var req consolesdk.SchedulerConfigRequest
					if c.IsSet("interval") {
						v := c.Float64("interval")
						req.IntervalMinutes = &v
					}
					if c.IsSet("threshold") {
						v := c.Float64("threshold")
						req.ThresholdMinutes = &v
					}
					return cl.UpdateSchedulerConfig(c.Context, req)
				}),
			},
			{
				Name:  "trigger",
				Usage: "run one tick now",
				Action: func(c *cli.Context) error {
					report, err := newClient(c).TriggerScheduler(c.Context)
					if err != nil {
						return err
					}
					return emit(c, report, func() { printTick(report) })
				},
			},
			{
				Name:  "history",
				Usage: "recent scheduler events, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).SchedulerHistory(c.Context, c.Int("limit"))
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						w := table()
						for _, e := range resp.Events {
							fmt.Fprintf(w, "%s\t%s\t%s\t\n", e.Timestamp.Local().Format("15:04:05"), e.Type, e.Message)
						}
						_ = w.Flush()
					})
				},
			},
			{
				Name:  "expiring",
				Usage: "access tokens that expire soon",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "minutes", Usage: "window (default: the scheduler threshold)"},
				},
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).ExpiringTokens(c.Context, c.Int("minutes"))
					if err != nil {
						return err
					}
					return emit(c, resp, func() {
						info("expiring within %gm", resp.ThresholdMinutes)
						printTokens(resp.Tokens)
					})
				},
			},
		},
	}
}
