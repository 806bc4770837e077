package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/merzah/merzah/internal/config"
)

var rotateNow string

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Run one rotation pass and print the report",
	Long: `Advance every recurring event whose occurrence has passed, once, and
print the rotation report as JSON. Useful from an external cron or to replay
a missed window with --now.

Examples:
  merzah rotate
  merzah rotate --now 2026-01-22T00:00:00Z`,
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().StringVar(&rotateNow, "now", "", "evaluate at this RFC 3339 time instead of the current time")
}

func runRotate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	now := time.Now()
	if rotateNow != "" {
		now, err = time.Parse(time.RFC3339, rotateNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	// Interrupts stop the pass between events.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	report, runErr := a.scheduler.RunAt(ctx, now)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if report != nil {
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("rotation: %w", runErr)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d event(s) failed to rotate", len(report.Failed))
	}
	return nil
}
