// Package normalize reshapes raw event-log query results into display records:
// platform-encoded dates become UTC timestamps and messages become key/value maps.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// TimestampLayout is the display format for converted dates (UTC, seconds precision)
const TimestampLayout = "2006-01-02 15:04:05"

const datePrefix = "/Date("

// dateFields are rewritten by NormalizeDate; everything else except Message passes through
var dateFields = []string{types.FieldTimeCreated, types.FieldTimeGenerated}

// NormalizeResult normalizes a query result of any supported shape.
//
// A list is normalized element by element, a single record directly. Error
// values and anything that is not a record or list of records come back
// unchanged. The input is never modified; records are copied before rewriting.
//
// A Message that is not a string (for example an already parsed message
// dictionary) is left as is, so applying NormalizeResult twice yields the
// same value as applying it once.
func NormalizeResult(result any) any {
	switch v := result.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if rec, ok := item.(map[string]any); ok {
				out[i] = NormalizeRecord(rec)
			} else {
				out[i] = item
			}
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, rec := range v {
			out[i] = NormalizeRecord(rec)
		}
		return out
	case map[string]any:
		if _, isErr := types.ErrorOf(v); isErr {
			return v
		}
		return NormalizeRecord(v)
	default:
		return result
	}
}

// NormalizeRecord returns a copy of rec with date and message fields rewritten.
// Missing fields stay missing.
func NormalizeRecord(rec types.Record) types.Record {
	if rec == nil {
		return nil
	}

	out := make(types.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	for _, field := range dateFields {
		if v, ok := out[field]; ok {
			out[field] = NormalizeDate(v)
		}
	}

	if msg, ok := out[types.FieldMessage].(string); ok {
		out[types.FieldMessage] = ParseMessage(msg)
	}

	return out
}

// NormalizeDate converts "/Date(<ms>)..." into "YYYY-MM-DD HH:MM:SS" (UTC).
// Strings without the encoding and non-string values are returned unchanged.
func NormalizeDate(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if t, ok := ParseDate(s); ok {
		return t.Format(TimestampLayout)
	}
	return s
}

// ParseDate decodes the "/Date(<ms>)" encoding written by ConvertTo-Json.
// Anything after the digits (closing parenthesis, timezone offset, trailing
// slash) is ignored.
func ParseDate(s string) (time.Time, bool) {
	if !strings.HasPrefix(s, datePrefix) {
		return time.Time{}, false
	}
	rest := s[len(datePrefix):]

	end := 0
	if end < len(rest) && rest[end] == '-' {
		end++
	}
	start := end
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == start {
		return time.Time{}, false
	}

	ms, err := strconv.ParseInt(rest[:end], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// ParseMessage splits a "key=value; key=value" message into a dictionary.
//
// Segments are separated by ';' and trimmed; empty ones are skipped. A segment
// is split on its first '=' only, and later duplicate keys win. The first
// segment without '=' is kept under "Description"; further free-text
// segments are dropped.
func ParseMessage(message string) types.MessageDict {
	dict := make(types.MessageDict)

	for _, segment := range strings.Split(message, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if key, value, found := strings.Cut(segment, "="); found {
			dict[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}

		if _, exists := dict[types.FieldDescription]; !exists {
			dict[types.FieldDescription] = segment
		}
	}

	return dict
}
