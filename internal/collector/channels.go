package collector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/digggggmori-pixel/elog/pkg/types"
)

// ErrUnknownChannel is returned for channel keys not in Channels
var ErrUnknownChannel = errors.New("unknown channel")

// Channels known to elog, in display order.
// Classic logs are read with Get-EventLog, everything else with Get-WinEvent.
var Channels = []types.Channel{
	{Key: "application", LogName: "Application", Source: types.SourceEventLog, Description: "Application log"},
	{Key: "security", LogName: "Security", Source: types.SourceEventLog, Description: "Security audit log"},
	{Key: "sysmon", LogName: "Microsoft-Windows-Sysmon/Operational", Source: types.SourceWinEvent, Description: "Sysmon process/network/file events"},
	{Key: "firewall", LogName: "Microsoft-Windows-Windows Firewall With Advanced Security/Firewall", Source: types.SourceWinEvent, Description: "Windows Firewall rule changes"},
	{Key: "taskscheduler", LogName: "Microsoft-Windows-TaskScheduler/Operational", Source: types.SourceWinEvent, Description: "Task Scheduler operations"},
	{Key: "powershell", LogName: "Microsoft-Windows-PowerShell/Operational", Source: types.SourceWinEvent, Description: "PowerShell engine and script block events"},
	{Key: "defender", LogName: "Microsoft-Windows-Windows Defender/Operational", Source: types.SourceWinEvent, Description: "Microsoft Defender detections"},
	{Key: "wmi", LogName: "Microsoft-Windows-WMI-Activity/Operational", Source: types.SourceWinEvent, Description: "WMI activity"},
}

// LookupChannel finds a channel by key, case-insensitively
func LookupChannel(key string) (types.Channel, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, ch := range Channels {
		if ch.Key == k {
			return ch, nil
		}
	}
	return types.Channel{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownChannel, key, strings.Join(ChannelKeys(), ", "))
}

// ChannelKeys returns the keys of all known channels
func ChannelKeys() []string {
	keys := make([]string, len(Channels))
	for i, ch := range Channels {
		keys[i] = ch.Key
	}
	return keys
}

// CustomChannel describes an arbitrary log name read through the given source
func CustomChannel(logName string, source types.Source) types.Channel {
	return types.Channel{Key: logName, LogName: logName, Source: source}
}
