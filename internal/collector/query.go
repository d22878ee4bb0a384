package collector

import (
	"fmt"
	"strings"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// DefaultLimit is used when a query asks for fewer than one record
const DefaultLimit = 10

// BuildEventLogQuery returns the Get-EventLog pipeline for a classic log
func BuildEventLogQuery(logName string, limit int) string {
	return fmt.Sprintf(
		"Get-EventLog -LogName %s -Newest %d | "+
			"Select-Object TimeGenerated, EntryType, Source, Message | ConvertTo-Json -Depth 2",
		quoteArg(logName), clampLimit(limit),
	)
}

// BuildWinEventQuery returns the Get-WinEvent pipeline for a channel
func BuildWinEventQuery(logName string, limit int) string {
	return fmt.Sprintf(
		"Get-WinEvent -LogName %s -MaxEvents %d | "+
			"Select-Object TimeCreated, Id, LevelDisplayName, ProviderName, Message | ConvertTo-Json -Depth 2",
		quoteArg(logName), clampLimit(limit),
	)
}

// BuildQuery picks the pipeline for the channel's source
func BuildQuery(ch types.Channel, limit int) string {
	if ch.Source == types.SourceEventLog {
		return BuildEventLogQuery(ch.LogName, limit)
	}
	return BuildWinEventQuery(ch.LogName, limit)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	return limit
}

// quoteArg wraps s in a PowerShell double-quoted string.
// Backtick, double quote and $ are escaped so the name is taken literally.
func quoteArg(s string) string {
	r := strings.NewReplacer("`", "``", `"`, "`\"", "$", "`$")
	return `"` + r.Replace(s) + `"`
}
