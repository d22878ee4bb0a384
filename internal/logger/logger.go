// Package logger provides diagnostic logging for elog.
// Logs go to stderr and optionally a file; stdout is reserved for records.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the global logger
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	Console bool   // write to stderr
	File    string // optional log file path; a directory gets a generated name
}

var (
	mu       sync.RWMutex
	instance = zerolog.New(io.Discard)
	file     *os.File
	filePath string
)

// Init (re)configures the global logger
func Init(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	var writers []io.Writer
	if opts.Console {
		if strings.EqualFold(opts.Format, "json") {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
		}
	}

	var f *os.File
	path := ""
	if opts.File != "" {
		path = resolveFilePath(opts.File)
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		writers = append(writers, f)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()
	instance = zerolog.New(out).Level(level).With().Timestamp().Logger()
	file = f
	filePath = path

	if file != nil {
		hostname, _ := os.Hostname()
		instance.Info().
			Str("hostname", hostname).
			Str("os", runtime.GOOS+"/"+runtime.GOARCH).
			Str("go", runtime.Version()).
			Msg("elog log started")
	}
	return nil
}

// resolveFilePath turns a directory into a timestamped log file name inside it
func resolveFilePath(p string) string {
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		hostname, _ := os.Hostname()
		name := fmt.Sprintf("elog_%s_%s.log", hostname, time.Now().Format("20060102_150405"))
		return filepath.Join(p, name)
	}
	return p
}

// ParseLevel converts a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger returns the underlying zerolog logger for structured fields
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// GetLogPath returns the path to the log file, or "" when not logging to a file
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return filePath
}

// Close flushes and closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		instance.Info().Msg("elog log closed")
	}
	closeFileLocked()
	instance = zerolog.New(io.Discard)
}

func closeFileLocked() {
	if file != nil {
		file.Close()
		file = nil
		filePath = ""
	}
}

func logf(level zerolog.Level, format string, args ...interface{}) {
	l := Logger()
	e := l.WithLevel(level)
	if e == nil {
		return
	}
	_, f, line, ok := runtime.Caller(2)
	if ok {
		e = e.Str("caller", fmt.Sprintf("%s:%d", filepath.Base(f), line))
	}
	e.Msgf(format, args...)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	logf(zerolog.DebugLevel, format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logf(zerolog.InfoLevel, format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logf(zerolog.WarnLevel, format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logf(zerolog.ErrorLevel, format, args...)
}

// Section logs a section header for better readability
func Section(name string) {
	logf(zerolog.InfoLevel, "========== %s ==========", name)
}

// Timing logs execution time for an operation
func Timing(operation string, start time.Time) {
	l := Logger()
	l.Debug().Str("operation", operation).Dur("elapsed", time.Since(start)).Msg("[TIMING] completed")
}

// Command logs an external command before it runs
func Command(name string, args ...string) {
	l := Logger()
	l.Debug().Str("cmd", name).Str("args", truncate(strings.Join(args, " "), 300)).Msg("exec")
}

// CommandResult logs the outcome of an external command
func CommandResult(name string, exitCode int, stderr string, err error) {
	l := Logger()
	if err != nil || exitCode != 0 {
		l.Warn().Str("cmd", name).Int("exit_code", exitCode).Str("stderr", truncate(stderr, 300)).Err(err).Msg("exec failed")
		return
	}
	l.Debug().Str("cmd", name).Msg("exec ok")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
