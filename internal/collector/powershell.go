package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/digggggmori-pixel/elog/internal/logger"
)

// utf8Prelude makes PowerShell 5.1 write UTF-8 instead of the console code page
const utf8Prelude = "[Console]::OutputEncoding = [System.Text.Encoding]::UTF8; "

// Output is what a finished shell command produced
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a PowerShell command line.
// A non-nil error means the process could not be run at all; a failing
// command is reported through Output.ExitCode.
type Runner interface {
	Run(ctx context.Context, command string) (Output, error)
}

// PowerShellRunner runs commands with powershell.exe or pwsh
type PowerShellRunner struct {
	Executable string
	Timeout    time.Duration
}

// NewPowerShellRunner creates a runner; an empty executable means "powershell"
func NewPowerShellRunner(executable string, timeout time.Duration) *PowerShellRunner {
	if executable == "" {
		executable = "powershell"
	}
	return &PowerShellRunner{Executable: executable, Timeout: timeout}
}

// Run executes command and captures its trimmed stdout and stderr
func (r *PowerShellRunner) Run(ctx context.Context, command string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := []string{"-NoProfile", "-NonInteractive", "-Command", utf8Prelude + command}
	logger.Command(r.Executable, args...)
	startTime := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	logger.Timing("PowerShellRunner.Run", startTime)

	out := Output{
		Stdout: strings.TrimSpace(decodeOutput(stdout.Bytes())),
		Stderr: strings.TrimSpace(decodeOutput(stderr.Bytes())),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.CommandResult(r.Executable, -1, out.Stderr, ctxErr)
		return out, fmt.Errorf("%s: %w", r.Executable, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		logger.CommandResult(r.Executable, -1, "", err)
		return out, fmt.Errorf("failed to run %s: %w", r.Executable, err)
	}

	logger.CommandResult(r.Executable, out.ExitCode, out.Stderr, nil)
	return out, nil
}

// decodeOutput converts subprocess bytes to a Go string.
// A UTF-8 or UTF-16 byte order mark selects that encoding; valid UTF-8 is
// used as is; anything else is assumed to be in the OEM code page.
func decodeOutput(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if hasBOM(data) {
		decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err == nil {
			return string(decoded)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	return decodeOEMOutput(data)
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
