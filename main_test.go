package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digggggmori-pixel/elog/internal/collector"
	"github.com/digggggmori-pixel/elog/internal/config"
	"github.com/digggggmori-pixel/elog/internal/output"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

type cannedRunner struct {
	commands []string
	stdout   string
}

func (r *cannedRunner) Run(ctx context.Context, command string) (collector.Output, error) {
	r.commands = append(r.commands, command)
	return collector.Output{Stdout: r.stdout}, nil
}

func newTestApp(t *testing.T, stdout string) (*App, *cannedRunner) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Quiet = true

	a, err := NewApp(cfg)
	require.NoError(t, err)

	r := &cannedRunner{stdout: stdout}
	a.runner = r
	a.out = output.NewWithWriter(output.Options{Quiet: true}, io.Discard)
	a.SetNormalize(cfg.Query.Normalize)
	return a, r
}

const securityJSON = `{"TimeGenerated":"\/Date(1700000000000)\/","EntryType":"SuccessAudit","Source":"Microsoft-Windows-Security-Auditing","Message":"An account was successfully logged on.;Logon Type=3"}`

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitErrorGeneric},
		{"query failed", errQueryFailed, ExitErrorGeneric},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), ExitErrorCanceled},
		{"invalid config", fmt.Errorf("%w: query.limit", config.ErrInvalidConfig), ExitErrorConfig},
		{"unknown channel", fmt.Errorf("%w \"x\"", collector.ErrUnknownChannel), ExitErrorConfig},
		{"usage", fmt.Errorf("%w: accepts at most 1 arg(s)", errUsage), ExitErrorConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestAppQueryNormalizes(t *testing.T) {
	a, r := newTestApp(t, securityJSON)

	ch, err := a.resolveChannel("Security")
	require.NoError(t, err)
	result := a.Query(context.Background(), ch, a.Limit(0))

	require.Len(t, r.commands, 1)
	assert.True(t, strings.HasPrefix(r.commands[0], `Get-EventLog -LogName "Security" -Newest 10 |`))

	records := result.RecordList()
	require.Len(t, records, 1)
	assert.Equal(t, "2023-11-14 22:13:20", records[0]["TimeGenerated"])
	assert.Equal(t, types.MessageDict{
		"Description": "An account was successfully logged on.",
		"Logon Type":  "3",
	}, records[0]["Message"])
}

func TestAppRawSkipsNormalization(t *testing.T) {
	a, _ := newTestApp(t, securityJSON)
	a.SetNormalize(false)

	result := a.Query(context.Background(), collector.CustomChannel("Security", types.SourceEventLog), 3)
	records := result.RecordList()
	require.Len(t, records, 1)
	assert.Equal(t, "/Date(1700000000000)/", records[0]["TimeGenerated"])
}

func TestAppResolveChannelDefault(t *testing.T) {
	a, _ := newTestApp(t, "")
	ch, err := a.resolveChannel("")
	require.NoError(t, err)
	assert.Equal(t, "sysmon", ch.Key)

	_, err = a.resolveChannel("nope")
	assert.ErrorIs(t, err, collector.ErrUnknownChannel)
}

func TestAppExportJSON(t *testing.T) {
	a, _ := newTestApp(t, securityJSON)

	_, err := a.ExportJSON()
	assert.Error(t, err)

	ch, err := a.resolveChannel("security")
	require.NoError(t, err)
	a.Query(context.Background(), ch, 1)

	path, err := a.ExportJSON()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Logon Type": "3"`)
}

func TestAppMonitorStopsAfterCount(t *testing.T) {
	a, r := newTestApp(t, securityJSON)
	a.cfg.Monitor.Delay = "1ms"

	ch, err := a.resolveChannel("security")
	require.NoError(t, err)
	require.NoError(t, a.Monitor(context.Background(), ch, 2, 3))
	assert.Len(t, r.commands, 3)
}
