package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// ParseFailureMessage is the error text for stdout that is not JSON
const ParseFailureMessage = "failed to parse output as JSON"

// ParseOutput turns a finished command into a raw result.
//
// Exit code 0 yields the decoded JSON value (a record or a list of records);
// numbers are kept as json.Number so event IDs round-trip exactly. Empty
// output, which PowerShell produces when nothing matched, yields an empty
// list. Undecodable output and non-zero exit codes yield an error value.
func ParseOutput(out Output) any {
	if out.ExitCode != 0 {
		msg := out.Stderr
		if msg == "" {
			msg = fmt.Sprintf("command exited with code %d", out.ExitCode)
		}
		return types.QueryError{Error: msg}.AsRecord()
	}

	stdout := strings.TrimSpace(out.Stdout)
	if stdout == "" {
		return []any{}
	}

	v, err := decodeJSON(stdout)
	if err != nil {
		return types.QueryError{Error: ParseFailureMessage, RawOutput: out.Stdout}.AsRecord()
	}
	return v
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}
