package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kastheco/glrhs/internal/check"
	"github.com/kastheco/glrhs/internal/pluginapi"
	"github.com/spf13/cobra"
)

// errUnhealthy is returned when health < 100% to signal exit code 1 without printing a message.
var errUnhealthy = errors.New("unhealthy")

const checkTimeout = 10 * time.Second

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit the glrhs setup",
		Long: `Checks everything a window needs and reports each probe:

  1. config         (server url and plugin id)
  2. plugin api     (reachable, gitlab account connected)
  3. websocket      (endpoint derived from the server url)
  4. popout socket  (a main window is listening, optional)
  5. journal        (the event database opens, optional)

Exit code 0 if no probe failed, exit code 1 otherwise.`,
		RunE: runCheck,
		// Health failures are not usage errors.
		SilenceUsage: true,
		// Suppress cobra's "Error: ..." line for the unhealthy sentinel.
		SilenceErrors: true,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	var api check.Connector
	if client, err := pluginapi.NewClient(cfg.APIBaseURL(), cfg.Token); err == nil {
		api = client
	}

	report := check.Run(ctx, check.Probes(cfg, api, check.DialUnix))

	out := cmd.OutOrStdout()
	for _, res := range report.Results {
		fmt.Fprintf(out, "  %s %-14s %s\n", res.Status.Glyph(), res.Name, res.Detail)
	}

	ok, total := report.Summary()
	pct := 0
	if total > 0 {
		pct = ok * 100 / total
	}

	fmt.Fprintf(out, "\nHealth: %d/%d OK (%d%%)\n", ok, total, pct)

	if pct < 100 {
		return errUnhealthy
	}
	return nil
}
