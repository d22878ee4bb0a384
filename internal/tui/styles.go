package tui

import "github.com/charmbracelet/lipgloss"

// ── Color Palette ──

var (
	ColorBG     = lipgloss.Color("#0c0c14")
	ColorBorder = lipgloss.Color("#2a2a3d")

	ColorText    = lipgloss.Color("#c8c8d4")
	ColorTextDim = lipgloss.Color("#6b6b7b")

	ColorAccent    = lipgloss.Color("#5eead4")
	ColorAccentDim = lipgloss.Color("#2d6a5e")

	// Event levels
	ColorCritical    = lipgloss.Color("#ef4444")
	ColorError       = lipgloss.Color("#f97316")
	ColorWarning     = lipgloss.Color("#eab308")
	ColorInformation = lipgloss.Color("#06b6d4")
	ColorVerbose     = lipgloss.Color("#6b6b7b")
)

// ── Reusable Styles ──

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	// Channel tabs
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBG).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1)

	RecordStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	RecordSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	AlertStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	// Detail panel key column
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)
)

// LevelStyle returns the style for an event level or entry type.
// Get-WinEvent reports LevelDisplayName, Get-EventLog reports EntryType.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "Critical":
		return lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	case "Error", "FailureAudit":
		return lipgloss.NewStyle().Foreground(ColorError)
	case "Warning":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case "Information", "SuccessAudit":
		return lipgloss.NewStyle().Foreground(ColorInformation)
	default:
		return lipgloss.NewStyle().Foreground(ColorVerbose)
	}
}

// Truncate truncates a string to maxLen runes, adding "..." if needed.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
