package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [channel]",
	Short: "Poll a channel and print the newest records after every delay",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE:  runMonitor,
}

var tuiCmd = &cobra.Command{
	Use:   "tui [channel]",
	Short: "Live terminal view of the newest records",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE:  runTUI,
}

var (
	monitorDelay time.Duration
	monitorCount int
	monitorLimit int
	tuiLimit     int
)

func init() {
	monitorCmd.Flags().DurationVar(&monitorDelay, "delay", 0, "Pause between queries (default from config)")
	monitorCmd.Flags().IntVar(&monitorCount, "count", 0, "Stop after N queries (0 = until interrupted)")
	monitorCmd.Flags().IntVarP(&monitorLimit, "limit", "n", 0, "Newest N records per query (default from config)")

	tuiCmd.Flags().DurationVar(&monitorDelay, "delay", 0, "Refresh interval (default from config)")
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "n", 0, "Newest N records (default from config)")
}

// applyDelay copies a --delay flag into the config
func applyDelay() error {
	if monitorDelay < 0 {
		return fmt.Errorf("%w: --delay must not be negative", errUsage)
	}
	if monitorDelay > 0 {
		app.cfg.Monitor.Delay = monitorDelay.String()
	}
	return nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorCount < 0 {
		return fmt.Errorf("%w: --count must not be negative", errUsage)
	}
	if err := applyDelay(); err != nil {
		return err
	}

	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	ch, err := app.resolveChannel(key)
	if err != nil {
		return err
	}
	return app.Monitor(cmd.Context(), ch, app.Limit(monitorLimit), monitorCount)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := applyDelay(); err != nil {
		return err
	}

	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	ch, err := app.resolveChannel(key)
	if err != nil {
		return err
	}
	return app.RunTUI(cmd.Context(), ch, app.Limit(tuiLimit))
}
