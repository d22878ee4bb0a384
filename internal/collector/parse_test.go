package collector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		want any
	}{
		{
			name: "list",
			out:  Output{Stdout: `[{"Id":4624},{"Id":4625}]`},
			want: []any{map[string]any{"Id": json.Number("4624")}, map[string]any{"Id": json.Number("4625")}},
		},
		{
			name: "single object",
			out:  Output{Stdout: `{"Id":4624,"Message":null}`},
			want: map[string]any{"Id": json.Number("4624"), "Message": nil},
		},
		{
			name: "empty stdout",
			out:  Output{Stdout: "  \r\n"},
			want: []any{},
		},
		{
			name: "not json",
			out:  Output{Stdout: "Access is denied."},
			want: map[string]any{"error": ParseFailureMessage, "raw_output": "Access is denied."},
		},
		{
			name: "trailing garbage",
			out:  Output{Stdout: `{"Id":1} oops`},
			want: map[string]any{"error": ParseFailureMessage, "raw_output": `{"Id":1} oops`},
		},
		{
			name: "failure with stderr",
			out:  Output{Stderr: "Get-EventLog : Requested registry access is not allowed.", ExitCode: 1},
			want: map[string]any{"error": "Get-EventLog : Requested registry access is not allowed."},
		},
		{
			name: "failure without stderr",
			out:  Output{Stdout: "[]", ExitCode: 2},
			want: map[string]any{"error": "command exited with code 2"},
		},
		{
			name: "non-ascii preserved",
			out:  Output{Stdout: `{"Message":"Xizmat ishga tushdi — ok"}`},
			want: map[string]any{"Message": "Xizmat ishga tushdi — ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOutput(tt.out))
		})
	}
}
