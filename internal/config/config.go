// Package config holds elog configuration: defaults, TOML file, ELOG_* environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/digggggmori-pixel/elog/internal/logger"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds elog configuration
type Config struct {
	Shell   ShellConfig   `toml:"shell"`
	Query   QueryConfig   `toml:"query"`
	Monitor MonitorConfig `toml:"monitor"`
	Logging LoggingConfig `toml:"logging"`
	Output  OutputConfig  `toml:"output"`
}

// ShellConfig controls how PowerShell is invoked
type ShellConfig struct {
	Executable string `toml:"executable"` // "powershell" or "pwsh"
	Timeout    string `toml:"timeout"`    // e.g. "30s"; "0" disables the timeout
}

// QueryConfig holds query defaults
type QueryConfig struct {
	Channel   string `toml:"channel"`   // channel key, e.g. "sysmon"
	Limit     int    `toml:"limit"`     // newest N records
	Normalize bool   `toml:"normalize"` // rewrite dates and messages
}

// MonitorConfig holds polling settings
type MonitorConfig struct {
	Delay         string `toml:"delay"`          // pause between queries, e.g. "2s"
	MaxIterations int    `toml:"max_iterations"` // 0 = until interrupted
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level   string `toml:"level"`   // "debug", "info", "warn", "error"
	Format  string `toml:"format"`  // "console" or "json"
	Console bool   `toml:"console"` // log to stderr
	File    string `toml:"file"`    // log file or directory, empty = none
}

// OutputConfig holds display/export settings
type OutputConfig struct {
	Dir   string `toml:"dir"`   // export directory for --save
	JSON  bool   `toml:"json"`  // print bare JSON only
	Quiet bool   `toml:"quiet"` // suppress headers
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			Executable: "powershell",
			Timeout:    "60s",
		},
		Query: QueryConfig{
			Channel:   "sysmon",
			Limit:     10,
			Normalize: true,
		},
		Monitor: MonitorConfig{
			Delay: "2s",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			Format:  "console",
			Console: true,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// Load reads defaults, then the TOML file at path (if it exists), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("Config file %s not found, using defaults", path)
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from ELOG_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ELOG_SHELL"); v != "" {
		c.Shell.Executable = v
	}
	if v := os.Getenv("ELOG_TIMEOUT"); v != "" {
		c.Shell.Timeout = v
	}
	if v := os.Getenv("ELOG_CHANNEL"); v != "" {
		c.Query.Channel = v
	}
	if v := os.Getenv("ELOG_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Query.Limit = n
		} else {
			logger.Warn("Ignoring ELOG_LIMIT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("ELOG_NORMALIZE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Query.Normalize = b
		}
	}
	if v := os.Getenv("ELOG_MONITOR_DELAY"); v != "" {
		c.Monitor.Delay = v
	}
	if v := os.Getenv("ELOG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ELOG_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("ELOG_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("ELOG_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
}

// Validate checks value ranges and formats
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Shell.Executable) == "" {
		return fmt.Errorf("%w: shell.executable is empty", ErrInvalidConfig)
	}
	if _, err := c.ShellTimeout(); err != nil {
		return fmt.Errorf("%w: shell.timeout: %v", ErrInvalidConfig, err)
	}
	if c.Query.Limit < 1 {
		return fmt.Errorf("%w: query.limit must be at least 1, got %d", ErrInvalidConfig, c.Query.Limit)
	}
	delay, err := c.MonitorDelay()
	if err != nil {
		return fmt.Errorf("%w: monitor.delay: %v", ErrInvalidConfig, err)
	}
	if delay <= 0 {
		return fmt.Errorf("%w: monitor.delay must be positive, got %s", ErrInvalidConfig, c.Monitor.Delay)
	}
	if c.Monitor.MaxIterations < 0 {
		return fmt.Errorf("%w: monitor.max_iterations must not be negative", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ShellTimeout parses Shell.Timeout; "" or "0" means no timeout
func (c *Config) ShellTimeout() (time.Duration, error) {
	t := strings.TrimSpace(c.Shell.Timeout)
	if t == "" || t == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(t)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", t)
	}
	return d, nil
}

// MonitorDelay parses Monitor.Delay
func (c *Config) MonitorDelay() (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(c.Monitor.Delay))
}

// LoggerOptions maps the logging section to logger.Options
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:   c.Logging.Level,
		Format:  c.Logging.Format,
		Console: c.Logging.Console,
		File:    c.Logging.File,
	}
}
