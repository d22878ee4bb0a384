// Package output handles CLI output formatting
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// Options for output handler
type Options struct {
	Quiet bool // no header or summary lines
	JSON  bool // records only, as bare JSON
}

// Handler manages CLI output
type Handler struct {
	opts Options
	out  io.Writer
}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5eead4")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b6b7b"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
)

// New creates a new output handler writing to stdout
func New(opts Options) *Handler {
	return NewWithWriter(opts, os.Stdout)
}

// NewWithWriter creates a handler writing to w
func NewWithWriter(opts Options, w io.Writer) *Handler {
	return &Handler{opts: opts, out: w}
}

// WriteJSON pretty-prints v with a four-space indent. Non-ASCII text is
// written as is and HTML characters are not escaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// PrintHeader prints a one-line description of the query
func (h *Handler) PrintHeader(result *types.QueryResult) {
	if h.opts.Quiet || h.opts.JSON {
		return
	}
	fmt.Fprintln(h.out, headerStyle.Render(fmt.Sprintf("%s (%s)", result.LogName, result.Source))+
		dimStyle.Render(fmt.Sprintf("  newest %d • %s • %s",
			result.Limit, result.Host.Hostname, result.QueryTime.UTC().Format("2006-01-02 15:04:05 UTC"))))
}

// PrintResult prints the records of a query, framed by header and summary
func (h *Handler) PrintResult(result *types.QueryResult) error {
	h.PrintHeader(result)
	if err := WriteJSON(h.out, result.Records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	h.PrintSummary(result)
	return nil
}

// PrintSummary prints the record count or the query error
func (h *Handler) PrintSummary(result *types.QueryResult) {
	if h.opts.Quiet || h.opts.JSON {
		return
	}
	if msg, isErr := result.ErrorMessage(); isErr {
		fmt.Fprintln(h.out, errorStyle.Render("query failed: ")+firstLine(msg))
		return
	}
	fmt.Fprintln(h.out, successStyle.Render(fmt.Sprintf("%d records", len(result.RecordList())))+
		dimStyle.Render(fmt.Sprintf(" in %dms", result.DurationMs)))
	fmt.Fprintln(h.out)
}

// PrintChannels lists known channels
func (h *Handler) PrintChannels(channels []types.Channel) error {
	if h.opts.JSON {
		return WriteJSON(h.out, channels)
	}
	for _, ch := range channels {
		fmt.Fprintf(h.out, "%-14s %-9s %s\n", headerStyle.Render(ch.Key), ch.Source, ch.LogName)
		if ch.Description != "" && !h.opts.Quiet {
			fmt.Fprintf(h.out, "%-14s %-9s %s\n", "", "", dimStyle.Render(ch.Description))
		}
	}
	return nil
}

// PrintError prints an error message
func (h *Handler) PrintError(format string, args ...interface{}) {
	if h.opts.JSON {
		return
	}
	fmt.Fprintln(h.out, errorStyle.Render("ERROR: ")+fmt.Sprintf(format, args...))
}

// SaveResults writes the result as JSON into outputDir and returns the file path
func (h *Handler) SaveResults(result *types.QueryResult, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	filename := fmt.Sprintf("elog_%s_%s.json", safeName(result.Channel), result.QueryTime.Format("2006-01-02_150405"))
	fullPath := filepath.Join(outputDir, filename)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	defer f.Close()

	if err := WriteJSON(f, result); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}

	if !h.opts.Quiet && !h.opts.JSON {
		fmt.Fprintf(h.out, "Saved: %s\n", fullPath)
	}
	return fullPath, nil
}

// safeName makes a channel key usable as a file name component
func safeName(s string) string {
	if s == "" {
		return "query"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// Stamp formats a time the way records are displayed
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
