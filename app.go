package main

import (
	"context"
	"fmt"
	"os"

	"github.com/digggggmori-pixel/elog/internal/collector"
	"github.com/digggggmori-pixel/elog/internal/config"
	"github.com/digggggmori-pixel/elog/internal/logger"
	"github.com/digggggmori-pixel/elog/internal/monitor"
	"github.com/digggggmori-pixel/elog/internal/output"
	"github.com/digggggmori-pixel/elog/internal/tui"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

const Version = "1.0.0"

// App wires configuration, collector and output for the commands
type App struct {
	cfg        *config.Config
	runner     collector.Runner
	collector  *collector.EventLogCollector
	out        *output.Handler
	lastResult *types.QueryResult
}

// NewApp builds the collector from cfg
func NewApp(cfg *config.Config) (*App, error) {
	timeout, err := cfg.ShellTimeout()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		runner: collector.NewPowerShellRunner(cfg.Shell.Executable, timeout),
		out:    output.New(output.Options{Quiet: cfg.Output.Quiet, JSON: cfg.Output.JSON}),
	}
	a.SetNormalize(cfg.Query.Normalize)
	return a, nil
}

// SetNormalize rebuilds the collector with normalization on or off
func (a *App) SetNormalize(enabled bool) {
	a.collector = collector.NewEventLogCollector(
		collector.WithRunner(a.runner),
		collector.WithLimit(a.cfg.Query.Limit),
		collector.WithNormalize(enabled),
	)
}

// Limit returns limit, or the configured default when limit is not positive
func (a *App) Limit(limit int) int {
	if limit > 0 {
		return limit
	}
	return a.cfg.Query.Limit
}

// resolveChannel maps a key to a known channel, defaulting to the configured one
func (a *App) resolveChannel(key string) (types.Channel, error) {
	if key == "" {
		key = a.cfg.Query.Channel
	}
	return collector.LookupChannel(key)
}

// Query runs one query and remembers the result for ExportJSON
func (a *App) Query(ctx context.Context, ch types.Channel, limit int) *types.QueryResult {
	result := a.collector.Query(ctx, ch, limit)
	a.lastResult = result
	return result
}

// PrintResult writes the result to stdout in the configured format
func (a *App) PrintResult(result *types.QueryResult) error {
	return a.out.PrintResult(result)
}

// CollectAll queries the given channel keys concurrently
func (a *App) CollectAll(ctx context.Context, keys []string, limit int) (map[string]*types.QueryResult, error) {
	return a.collector.CollectAll(ctx, keys, limit)
}

// Save writes result into the configured output directory
func (a *App) Save(result *types.QueryResult) (string, error) {
	return a.out.SaveResults(result, a.cfg.Output.Dir)
}

// ExportJSON saves the last result into the configured output directory
func (a *App) ExportJSON() (string, error) {
	if a.lastResult == nil {
		return "", fmt.Errorf("no query result available")
	}
	return a.Save(a.lastResult)
}

// Monitor polls ch until ctx ends or count results were printed
func (a *App) Monitor(ctx context.Context, ch types.Channel, limit, count int) error {
	delay, err := a.cfg.MonitorDelay()
	if err != nil {
		return err
	}
	if count == 0 {
		count = a.cfg.Monitor.MaxIterations
	}

	svc := monitor.NewService(a.collector, monitor.Config{
		Channel:       ch,
		Limit:         limit,
		Delay:         delay,
		MaxIterations: count,
	})
	return svc.Run(ctx, func(result *types.QueryResult) error {
		a.lastResult = result
		return a.out.PrintResult(result)
	})
}

// RunTUI opens the live view starting at ch
func (a *App) RunTUI(ctx context.Context, ch types.Channel, limit int) error {
	delay, err := a.cfg.MonitorDelay()
	if err != nil {
		return err
	}

	// stderr shares the terminal with the alt screen; keep only the log file
	opts := a.cfg.LoggerOptions()
	opts.Console = false
	if err := logger.Init(opts); err != nil {
		return err
	}

	channels := append([]types.Channel(nil), collector.Channels...)
	start := -1
	for i, c := range channels {
		if c.LogName == ch.LogName {
			start = i
			break
		}
	}
	if start < 0 {
		channels = append([]types.Channel{ch}, channels...)
		start = 0
	}

	return tui.Run(ctx, tui.Options{
		Querier:   a.collector,
		Channels:  channels,
		Start:     start,
		Limit:     limit,
		Delay:     delay,
		ExportDir: a.cfg.Output.Dir,
	})
}

// PrintChannels lists the known channels
func (a *App) PrintChannels() error {
	return a.out.PrintChannels(collector.Channels)
}

// PrintError reports err on stderr
func (a *App) PrintError(err error) {
	output.NewWithWriter(output.Options{}, os.Stderr).PrintError("%v", err)
	logger.Error("%v", err)
}
