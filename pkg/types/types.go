// Package types defines the core data structures for elog
package types

import (
	"fmt"
	"strings"
	"time"
)

// Record is a single event-log record as decoded from PowerShell JSON output.
// Values are strings, json.Number, nil, or (after normalization) a MessageDict.
type Record = map[string]any

// MessageDict is the structured form of a record's Message field
type MessageDict = map[string]string

// Known record field names
const (
	FieldTimeCreated      = "TimeCreated"
	FieldTimeGenerated    = "TimeGenerated"
	FieldMessage          = "Message"
	FieldID               = "Id"
	FieldLevelDisplayName = "LevelDisplayName"
	FieldProviderName     = "ProviderName"
	FieldEntryType        = "EntryType"
	FieldSource           = "Source"

	// FieldDescription holds the first free-text segment of a message
	FieldDescription = "Description"

	// FieldError and FieldRawOutput make up an error value
	FieldError     = "error"
	FieldRawOutput = "raw_output"
)

// Source selects which PowerShell cmdlet reads a channel
type Source string

const (
	// SourceEventLog uses Get-EventLog (classic logs, TimeGenerated)
	SourceEventLog Source = "eventlog"
	// SourceWinEvent uses Get-WinEvent (ETW channels, TimeCreated)
	SourceWinEvent Source = "winevent"
)

// Channel describes a named Windows event-log channel
type Channel struct {
	Key         string `json:"key"`
	LogName     string `json:"log_name"`
	Source      Source `json:"source"`
	Description string `json:"description,omitempty"`
}

// QueryError is the error value returned in place of records when a query fails
type QueryError struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output,omitempty"`
}

// AsRecord converts the error into the map shape callers branch on
func (e QueryError) AsRecord() Record {
	r := Record{FieldError: e.Error}
	if e.RawOutput != "" {
		r[FieldRawOutput] = e.RawOutput
	}
	return r
}

// HostInfo represents the host the query ran on
type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
}

// QueryResult wraps one query's (normalized) records for display and export
type QueryResult struct {
	QueryID    string    `json:"query_id"`
	Channel    string    `json:"channel"`
	LogName    string    `json:"log_name"`
	Source     Source    `json:"source"`
	Limit      int       `json:"limit"`
	QueryTime  time.Time `json:"query_time"`
	DurationMs int64     `json:"duration_ms"`
	Host       HostInfo  `json:"host"`
	Records    any       `json:"records"`
}

// ErrorMessage returns the error text if Records is an error value
func (r *QueryResult) ErrorMessage() (string, bool) {
	return ErrorOf(r.Records)
}

// RecordList returns Records as a list regardless of whether PowerShell
// emitted a single object or an array. Error values yield nil.
func (r *QueryResult) RecordList() []Record {
	switch v := r.Records.(type) {
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				out = append(out, rec)
			}
		}
		return out
	case []Record:
		return v
	case map[string]any:
		if _, isErr := ErrorOf(v); isErr {
			return nil
		}
		return []Record{v}
	}
	return nil
}

// ErrorOf reports whether v is an error value and returns its message
func ErrorOf(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	raw, ok := m[FieldError]
	if !ok {
		return "", false
	}
	msg, _ := raw.(string)
	return msg, true
}

// StringField returns a record field as a trimmed string, or "" when absent
func StringField(rec Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case interface{ String() string }:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
