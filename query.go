package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/digggggmori-pixel/elog/internal/collector"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [channel]",
	Short: "Query the newest records of a known channel",
	Long: `Query the newest records of a known channel (see "elog channels").
Without an argument the channel from the configuration is used.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runQuery,
}

var eventlogCmd = &cobra.Command{
	Use:   "eventlog <LogName>",
	Short: "Query a classic log with Get-EventLog",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return queryAndPrint(cmd.Context(), collector.CustomChannel(args[0], types.SourceEventLog))
	},
}

var wineventCmd = &cobra.Command{
	Use:   "winevent <LogName>",
	Short: "Query any channel with Get-WinEvent",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return queryAndPrint(cmd.Context(), collector.CustomChannel(args[0], types.SourceWinEvent))
	},
}

var collectCmd = &cobra.Command{
	Use:   "collect [channel...]",
	Short: "Query several known channels concurrently",
	Long:  `Query several known channels concurrently. Without arguments every known channel is queried.`,
	RunE:  runCollect,
}

var (
	queryLimit int
	queryRaw   bool
	querySave  bool
)

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, eventlogCmd, wineventCmd, collectCmd} {
		cmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "Newest N records (default from config)")
		cmd.Flags().BoolVar(&queryRaw, "raw", false, "Skip date and message normalization")
		cmd.Flags().BoolVar(&querySave, "save", false, "Also save the result as JSON in the output directory")
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	ch, err := app.resolveChannel(key)
	if err != nil {
		return err
	}
	return queryAndPrint(cmd.Context(), ch)
}

// queryAndPrint runs one query, prints it and optionally saves it
func queryAndPrint(ctx context.Context, ch types.Channel) error {
	if queryRaw {
		app.SetNormalize(false)
	}

	stop := startSpinner(" querying " + ch.LogName)
	result := app.Query(ctx, ch, app.Limit(queryLimit))
	stop()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := app.PrintResult(result); err != nil {
		return err
	}
	if querySave {
		if _, err := app.ExportJSON(); err != nil {
			return err
		}
	}
	if _, isErr := result.ErrorMessage(); isErr {
		return errQueryFailed
	}
	return nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	keys := args
	if len(keys) == 0 {
		keys = collector.ChannelKeys()
	}
	if queryRaw {
		app.SetNormalize(false)
	}

	stop := startSpinner(fmt.Sprintf(" querying %d channels", len(keys)))
	results, err := app.CollectAll(cmd.Context(), keys, app.Limit(queryLimit))
	stop()
	if err != nil {
		return err
	}

	failed := 0
	for _, key := range keys {
		result, ok := results[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		if err := app.PrintResult(result); err != nil {
			return err
		}
		if querySave {
			if _, err := app.Save(result); err != nil {
				return err
			}
		}
		if _, isErr := result.ErrorMessage(); isErr {
			failed++
		}
	}
	if failed == len(results) && failed > 0 {
		return errQueryFailed
	}
	return nil
}

// startSpinner shows a spinner on stderr while a query runs; it stays off
// when stderr is not a terminal or output is quiet or JSON.
func startSpinner(suffix string) (stop func()) {
	fd := os.Stderr.Fd()
	if app.cfg.Output.Quiet || app.cfg.Output.JSON || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}
