package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/aussiebroadwan/specter/pkg/consolesdk"
)

func ok(format string, args ...any)   { fmt.Println(color.GreenString("[+] "+format, args...)) }
func info(format string, args ...any) { fmt.Println(color.CyanString("[i] "+format, args...)) }
func warn(format string, args ...any) { fmt.Println(color.YellowString("[-] "+format, args...)) }

// emit prints v as indented JSON when --json is set and otherwise calls
// human.
func emit(c *cli.Context, v any, human func()) error {
	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printTokens(tokens []consolesdk.Token) {
	if len(tokens) == 0 {
		warn("no tokens")
		return
	}
	w := table()
	fmt.Fprintln(w, "ID\tKIND\tUPN\tCLIENT\tAUDIENCE\tEXPIRES\t")
	for _, t := range tokens {
		id := t.ID
		if t.IsActive {
			id = color.GreenString("*%s", id)
		}
		client := t.ClientName
		if client == "" {
			client = t.ClientID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n", id, t.Kind, t.UPN, client, t.Audience, expiry(t.ExpiresAt, t.Expired))
	}
	_ = w.Flush()
}

func printToken(t *consolesdk.Token) {
	w := table()
	fmt.Fprintf(w, "id\t%s\n", t.ID)
	fmt.Fprintf(w, "kind\t%s\n", t.Kind)
	fmt.Fprintf(w, "upn\t%s\n", t.UPN)
	fmt.Fprintf(w, "client\t%s %s\n", t.ClientID, t.ClientName)
	if t.Audience != "" {
		fmt.Fprintf(w, "audience\t%s\n", t.Audience)
	}
	if t.Scope != "" {
		fmt.Fprintf(w, "scope\t%s\n", t.Scope)
	}
	fmt.Fprintf(w, "expires\t%s\n", expiry(t.ExpiresAt, t.Expired))
	fmt.Fprintf(w, "source\t%s\n", t.Source)
	if t.ParentID != "" {
		fmt.Fprintf(w, "parent\t%s\n", t.ParentID)
	}
	fmt.Fprintf(w, "active\t%t\n", t.IsActive)
	fmt.Fprintf(w, "token\t%s\n", t.Secret)
	if t.EmbeddedRefresh != "" {
		fmt.Fprintf(w, "refresh_token\t%s\n", t.EmbeddedRefresh)
	}
	_ = w.Flush()
}

func printTick(r *consolesdk.TickReport) {
	info("tick: %d candidates, %d refreshed, %d failed, %d already replaced in %dms",
		r.Candidates, r.Refreshed, r.Failed, r.Superseded, r.DurationMS)
	if r.Aborted {
		warn("tick aborted: %s", r.Error)
	}
	for _, res := range r.Results {
		if res.Error != "" {
			fmt.Println(color.RedString("    %s %s %s: %s", res.TokenID, res.UPN, res.Audience, res.Error))
			continue
		}
		fmt.Println(color.GreenString("    %s %s %s -> %s", res.TokenID, res.UPN, res.Audience, res.NewTokenID))
	}
}

func printSchedulerStatus(s *consolesdk.SchedulerStatus) {
	state := color.RedString("stopped")
	if s.Running {
		state = color.GreenString("running")
	}
	w := table()
	fmt.Fprintf(w, "state\t%s\n", state)
	fmt.Fprintf(w, "interval\t%gm\n", s.IntervalMinutes)
	fmt.Fprintf(w, "threshold\t%gm\n", s.ThresholdMinutes)
	if s.LastRunAt != nil {
		fmt.Fprintf(w, "last run\t%s\n", s.LastRunAt.Local().Format(time.DateTime))
	}
	if s.NextRunAt != nil {
		fmt.Fprintf(w, "next run\t%s\n", s.NextRunAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(w, "ticks\t%d (%d refreshed, %d failed)\n", s.Ticks, s.TotalRefreshed, s.TotalFailed)
	_ = w.Flush()
}

func expiry(at *time.Time, expired bool) string {
	switch {
	case at == nil:
		return "-"
	case expired:
		return color.RedString("expired")
	default:
		return time.Until(*at).Truncate(time.Second).String()
	}
}
