package collector

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// fakeRunner returns canned output and records the commands it was given
type fakeRunner struct {
	mu       sync.Mutex
	commands []string
	respond  func(command string) (Output, error)
}

func (f *fakeRunner) Run(ctx context.Context, command string) (Output, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	return f.respond(command)
}

func (f *fakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func staticRunner(stdout string) *fakeRunner {
	return &fakeRunner{respond: func(string) (Output, error) {
		return Output{Stdout: stdout}, nil
	}}
}

const sysmonJSON = `[
  {
    "TimeCreated": "\/Date(1700000000000)\/",
    "Id": 1,
    "LevelDisplayName": "Information",
    "ProviderName": "Microsoft-Windows-Sysmon",
    "Message": "Process Create; ProcessId=1234; Image=C:\\Windows\\System32\\svchost.exe"
  },
  {
    "TimeCreated": "\/Date(1700000001000)\/",
    "Id": 3,
    "LevelDisplayName": "Information",
    "ProviderName": "Microsoft-Windows-Sysmon",
    "Message": "Network connection detected; DestinationPort=443"
  }
]`

func TestGetSysmonLogsNormalizes(t *testing.T) {
	runner := staticRunner(sysmonJSON)
	c := NewEventLogCollector(WithRunner(runner))

	got, ok := c.GetSysmonLogs(context.Background(), 2).([]any)
	require.True(t, ok)
	require.Len(t, got, 2)

	first := got[0].(map[string]any)
	assert.Equal(t, "2023-11-14 22:13:20", first["TimeCreated"])
	assert.Equal(t, json.Number("1"), first["Id"])
	assert.Equal(t, types.MessageDict{
		"Description": "Process Create",
		"ProcessId":   "1234",
		"Image":       `C:\Windows\System32\svchost.exe`,
	}, first["Message"])

	second := got[1].(map[string]any)
	assert.Equal(t, "2023-11-14 22:13:21", second["TimeCreated"])
	assert.Equal(t, types.MessageDict{"Description": "Network connection detected", "DestinationPort": "443"}, second["Message"])

	require.Len(t, runner.Commands(), 1)
	assert.Contains(t, runner.Commands()[0], `Get-WinEvent -LogName "Microsoft-Windows-Sysmon/Operational" -MaxEvents 2`)
}

func TestGetApplicationLogsSingleRecord(t *testing.T) {
	runner := staticRunner(`{"TimeGenerated":"\/Date(1700000000000)\/","EntryType":"Error","Source":"Application Error","Message":"Faulting application; Name=app.exe"}`)
	c := NewEventLogCollector(WithRunner(runner))

	got, ok := c.GetApplicationLogs(context.Background(), 1).(map[string]any)
	require.True(t, ok, "a single object stays a single object")
	assert.Equal(t, "2023-11-14 22:13:20", got["TimeGenerated"])
	assert.Equal(t, "Error", got["EntryType"])
	assert.Equal(t, types.MessageDict{"Description": "Faulting application", "Name": "app.exe"}, got["Message"])

	assert.Contains(t, runner.Commands()[0], `Get-EventLog -LogName "Application" -Newest 1`)
}

func TestWithNormalizeDisabled(t *testing.T) {
	c := NewEventLogCollector(WithRunner(staticRunner(sysmonJSON)), WithNormalize(false))

	got := c.GetSysmonLogs(context.Background(), 2).([]any)
	first := got[0].(map[string]any)
	assert.Equal(t, "/Date(1700000000000)/", first["TimeCreated"])
	assert.IsType(t, "", first["Message"])
}

func TestForwardingMethodsUseTheirChannels(t *testing.T) {
	runner := staticRunner("")
	c := NewEventLogCollector(WithRunner(runner))
	ctx := context.Background()

	calls := []struct {
		call func() any
		want string
	}{
		{func() any { return c.GetApplicationLogs(ctx, 5) }, `Get-EventLog -LogName "Application" -Newest 5`},
		{func() any { return c.GetSecurityLogs(ctx, 5) }, `Get-EventLog -LogName "Security" -Newest 5`},
		{func() any { return c.GetSysmonLogs(ctx, 5) }, `-LogName "Microsoft-Windows-Sysmon/Operational" -MaxEvents 5`},
		{func() any { return c.GetFirewallLogs(ctx, 5) }, `-LogName "Microsoft-Windows-Windows Firewall With Advanced Security/Firewall" -MaxEvents 5`},
		{func() any { return c.GetTaskSchedulerLogs(ctx, 5) }, `-LogName "Microsoft-Windows-TaskScheduler/Operational" -MaxEvents 5`},
		{func() any { return c.GetPowerShellLogs(ctx, 5) }, `-LogName "Microsoft-Windows-PowerShell/Operational" -MaxEvents 5`},
		{func() any { return c.GetDefenderLogs(ctx, 5) }, `-LogName "Microsoft-Windows-Windows Defender/Operational" -MaxEvents 5`},
		{func() any { return c.GetWMILogs(ctx, 5) }, `-LogName "Microsoft-Windows-WMI-Activity/Operational" -MaxEvents 5`},
	}

	for i, tc := range calls {
		got := tc.call()
		assert.Equal(t, []any{}, got, "empty output is an empty list")
		assert.Contains(t, runner.Commands()[i], tc.want)
	}
}

func TestQueryUsesDefaultLimit(t *testing.T) {
	runner := staticRunner("[]")
	c := NewEventLogCollector(WithRunner(runner), WithLimit(25))
	assert.Equal(t, 25, c.Limit())

	res, err := c.GetChannel(context.Background(), "Security", 0)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Limit)
	assert.Equal(t, "security", res.Channel)
	assert.Equal(t, "Security", res.LogName)
	assert.Equal(t, types.SourceEventLog, res.Source)
	assert.NotEmpty(t, res.QueryID)
	assert.Contains(t, runner.Commands()[0], "-Newest 25")
}

func TestGetChannelUnknown(t *testing.T) {
	c := NewEventLogCollector(WithRunner(staticRunner("[]")))
	_, err := c.GetChannel(context.Background(), "kernel", 10)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestQueryFailuresBecomeErrorValues(t *testing.T) {
	tests := []struct {
		name    string
		respond func(string) (Output, error)
		want    map[string]any
	}{
		{
			name: "runner error",
			respond: func(string) (Output, error) {
				return Output{}, errors.New(`exec: "powershell": executable file not found in $PATH`)
			},
			want: map[string]any{"error": `exec: "powershell": executable file not found in $PATH`},
		},
		{
			name: "non-zero exit",
			respond: func(string) (Output, error) {
				return Output{Stderr: "Get-WinEvent : No events were found", ExitCode: 1}, nil
			},
			want: map[string]any{"error": "Get-WinEvent : No events were found"},
		},
		{
			name: "not json",
			respond: func(string) (Output, error) {
				return Output{Stdout: "WARNING: something odd"}, nil
			},
			want: map[string]any{"error": ParseFailureMessage, "raw_output": "WARNING: something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEventLogCollector(WithRunner(&fakeRunner{respond: tt.respond}))
			res, err := c.GetChannel(context.Background(), "sysmon", 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Records)

			msg, isErr := res.ErrorMessage()
			assert.True(t, isErr)
			assert.Equal(t, tt.want["error"], msg)
			assert.Nil(t, res.RecordList())
		})
	}
}

func TestCollectAll(t *testing.T) {
	runner := &fakeRunner{respond: func(command string) (Output, error) {
		if strings.Contains(command, `"Security"`) {
			return Output{Stderr: "Requested registry access is not allowed.", ExitCode: 1}, nil
		}
		return Output{Stdout: `[{"Message":"A=1"}]`}, nil
	}}
	c := NewEventLogCollector(WithRunner(runner))

	results, err := c.CollectAll(context.Background(), []string{"sysmon", "security", "wmi"}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, runner.Commands(), 3)

	_, isErr := results["security"].ErrorMessage()
	assert.True(t, isErr)

	records := results["wmi"].RecordList()
	require.Len(t, records, 1)
	assert.Equal(t, types.MessageDict{"A": "1"}, records[0]["Message"])
}

func TestCollectAllRejectsUnknownKeyBeforeRunning(t *testing.T) {
	runner := staticRunner("[]")
	c := NewEventLogCollector(WithRunner(runner))

	_, err := c.CollectAll(context.Background(), []string{"sysmon", "nope"}, 3)
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.Empty(t, runner.Commands())
}

func TestCollectAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewEventLogCollector(WithRunner(staticRunner("[]")))
	_, err := c.CollectAll(ctx, []string{"sysmon"}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}
