package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/digggggmori-pixel/elog/internal/collector"
	"github.com/digggggmori-pixel/elog/internal/config"
	"github.com/digggggmori-pixel/elog/internal/logger"
)

// Process exit codes
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130
)

// errUsage marks bad arguments or flags
var errUsage = errors.New("invalid usage")

// errQueryFailed is returned after a query whose result is an error value was printed
var errQueryFailed = errors.New("query failed")

var (
	// Global flags
	configPath  string
	logLevel    string
	jsonOutput  bool
	quietOutput bool

	// Global state
	app *App
)

var rootCmd = &cobra.Command{
	Use:   "elog",
	Short: "Read and normalize Windows event logs",
	Long: `elog queries Windows event logs through PowerShell (Get-EventLog / Get-WinEvent),
rewrites /Date(ms)/ timestamps and splits "Key=Value;" messages into dictionaries.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "elog.toml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides config")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print bare JSON only")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false, "Suppress headers, summaries and the spinner")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	rootCmd.AddCommand(queryCmd, eventlogCmd, wineventCmd, collectCmd, monitorCmd, tuiCmd, channelsCmd, versionCmd)
}

// setup loads configuration (defaults -> file -> env -> flags), then the logger and the App
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if jsonOutput {
		cfg.Output.JSON = true
	}
	if quietOutput {
		cfg.Output.Quiet = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	logger.Debug("Command %s, config %s", cmd.Name(), configPath)

	app, err = NewApp(cfg)
	return err
}

// usageArgs tags argument validation failures so they map to the config exit code
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, collector.ErrUnknownChannel),
		errors.Is(err, errUsage):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	switch {
	case code == ExitErrorCanceled:
		fmt.Fprintln(os.Stderr, "interrupted")
	case errors.Is(err, errQueryFailed):
		logger.Warn("Query returned an error value")
	case err != nil:
		if app != nil {
			app.PrintError(err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	logger.Close()
	os.Exit(code)
}
