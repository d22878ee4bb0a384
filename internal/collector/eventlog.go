// Package collector retrieves Windows event-log records through PowerShell
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/digggggmori-pixel/elog/internal/logger"
	"github.com/digggggmori-pixel/elog/internal/normalize"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

// maxParallelQueries bounds concurrent PowerShell processes in CollectAll
const maxParallelQueries = 4

// EventLogCollector queries event-log channels and normalizes the results
type EventLogCollector struct {
	runner    Runner
	limit     int
	normalize bool
	now       func() time.Time
}

// EventLogOption is a functional option for EventLogCollector
type EventLogOption func(*EventLogCollector)

// NewEventLogCollector creates a collector backed by a local powershell runner
func NewEventLogCollector(opts ...EventLogOption) *EventLogCollector {
	c := &EventLogCollector{
		runner:    NewPowerShellRunner("powershell", 0),
		limit:     DefaultLimit,
		normalize: true,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithRunner sets the command runner
func WithRunner(r Runner) EventLogOption {
	return func(c *EventLogCollector) {
		c.runner = r
	}
}

// WithLimit sets the default number of newest records per query
func WithLimit(limit int) EventLogOption {
	return func(c *EventLogCollector) {
		c.limit = clampLimit(limit)
	}
}

// WithNormalize enables or disables date/message normalization
func WithNormalize(enabled bool) EventLogOption {
	return func(c *EventLogCollector) {
		c.normalize = enabled
	}
}

// Limit returns the default record limit
func (c *EventLogCollector) Limit() int {
	return c.limit
}

// Query runs one query against ch and wraps the result.
// Query failures are reported inside Records as an error value.
func (c *EventLogCollector) Query(ctx context.Context, ch types.Channel, limit int) *types.QueryResult {
	if limit < 1 {
		limit = c.limit
	}

	startTime := c.now()
	result := &types.QueryResult{
		QueryID:   uuid.New().String(),
		Channel:   ch.Key,
		LogName:   ch.LogName,
		Source:    ch.Source,
		Limit:     limit,
		QueryTime: startTime,
		Host:      GetHostInfo(),
	}

	logger.Debug("[%s] Querying %s (%s, newest %d)", result.QueryID[:8], ch.LogName, ch.Source, limit)
	result.Records = c.run(ctx, BuildQuery(ch, limit))
	result.DurationMs = c.now().Sub(startTime).Milliseconds()

	if msg, isErr := result.ErrorMessage(); isErr {
		logger.Warn("Query on %s failed: %s", ch.LogName, msg)
	} else {
		logger.Info("Query on %s returned %d records in %dms", ch.LogName, len(result.RecordList()), result.DurationMs)
	}

	return result
}

// GetEventLogs reads the newest records of a classic log with Get-EventLog
func (c *EventLogCollector) GetEventLogs(ctx context.Context, logName string, limit int) any {
	return c.Query(ctx, CustomChannel(logName, types.SourceEventLog), limit).Records
}

// GetWinEventLogs reads the newest records of a channel with Get-WinEvent
func (c *EventLogCollector) GetWinEventLogs(ctx context.Context, logName string, limit int) any {
	return c.Query(ctx, CustomChannel(logName, types.SourceWinEvent), limit).Records
}

// GetApplicationLogs reads the Application log
func (c *EventLogCollector) GetApplicationLogs(ctx context.Context, limit int) any {
	return c.GetEventLogs(ctx, "Application", limit)
}

// GetSecurityLogs reads the Security log
func (c *EventLogCollector) GetSecurityLogs(ctx context.Context, limit int) any {
	return c.GetEventLogs(ctx, "Security", limit)
}

// GetSysmonLogs reads Sysmon's operational channel
func (c *EventLogCollector) GetSysmonLogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-Sysmon/Operational", limit)
}

// GetFirewallLogs reads the Windows Firewall channel
func (c *EventLogCollector) GetFirewallLogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-Windows Firewall With Advanced Security/Firewall", limit)
}

// GetTaskSchedulerLogs reads the Task Scheduler operational channel
func (c *EventLogCollector) GetTaskSchedulerLogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-TaskScheduler/Operational", limit)
}

// GetPowerShellLogs reads the PowerShell operational channel
func (c *EventLogCollector) GetPowerShellLogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-PowerShell/Operational", limit)
}

// GetDefenderLogs reads the Windows Defender operational channel
func (c *EventLogCollector) GetDefenderLogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-Windows Defender/Operational", limit)
}

// GetWMILogs reads the WMI activity channel
func (c *EventLogCollector) GetWMILogs(ctx context.Context, limit int) any {
	return c.GetWinEventLogs(ctx, "Microsoft-Windows-WMI-Activity/Operational", limit)
}

// GetChannel queries a known channel by key
func (c *EventLogCollector) GetChannel(ctx context.Context, key string, limit int) (*types.QueryResult, error) {
	ch, err := LookupChannel(key)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, ch, limit), nil
}

// CollectAll queries several known channels concurrently.
// An unknown key fails the whole call before anything runs; a failing
// channel only yields an error value in its own result.
func (c *EventLogCollector) CollectAll(ctx context.Context, keys []string, limit int) (map[string]*types.QueryResult, error) {
	logger.Section("Event Log Collection")
	startTime := time.Now()

	channels := make([]types.Channel, 0, len(keys))
	for _, key := range keys {
		ch, err := LookupChannel(key)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	var mu sync.Mutex
	results := make(map[string]*types.QueryResult, len(channels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQueries)

	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			res := c.Query(gctx, ch, limit)
			mu.Lock()
			results[ch.Key] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("collection interrupted: %w", err)
	}

	logger.Timing("EventLogCollector.CollectAll", startTime)
	return results, nil
}

// run executes a query and converts whatever comes back into a result value
func (c *EventLogCollector) run(ctx context.Context, query string) any {
	out, err := c.runner.Run(ctx, query)
	if err != nil {
		return types.QueryError{Error: err.Error()}.AsRecord()
	}

	result := ParseOutput(out)
	if c.normalize {
		result = normalize.NormalizeResult(result)
	}
	return result
}
