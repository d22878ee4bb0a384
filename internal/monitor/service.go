// Package monitor polls one event-log channel at a fixed delay.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/digggggmori-pixel/elog/internal/logger"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

// DefaultDelay is the pause between two queries
const DefaultDelay = 2 * time.Second

// Querier runs a single query; *collector.EventLogCollector satisfies it
type Querier interface {
	Query(ctx context.Context, ch types.Channel, limit int) *types.QueryResult
}

// Handler receives every query result. Returning an error stops the monitor.
type Handler func(result *types.QueryResult) error

// Config holds monitor settings
type Config struct {
	Channel       types.Channel
	Limit         int
	Delay         time.Duration
	MaxIterations int // 0 = until the context is cancelled
}

// Service manages the polling lifecycle
type Service struct {
	querier Querier
	config  Config
	after   func(time.Duration) <-chan time.Time
}

// NewService creates a monitor service
func NewService(q Querier, cfg Config) *Service {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	return &Service{
		querier: q,
		config:  cfg,
		after:   time.After,
	}
}

// Run queries, hands the result to handle, waits Delay, and repeats until ctx
// is cancelled or MaxIterations results were delivered. Each delivered result
// is exactly one query; a query interrupted by cancellation is discarded.
// Cancellation is a normal stop and returns nil.
func (s *Service) Run(ctx context.Context, handle Handler) error {
	if handle == nil {
		return errors.New("monitor: nil handler")
	}

	logger.Section("Monitor")
	logger.Info("Monitoring %s every %s (limit %d)", s.config.Channel.LogName, s.config.Delay, s.config.Limit)

	iterations := 0
	for {
		result := s.querier.Query(ctx, s.config.Channel, s.config.Limit)
		if ctx.Err() != nil {
			logger.Info("Monitoring stopped after %d iterations", iterations)
			return nil
		}

		if err := handle(result); err != nil {
			logger.Error("Monitor handler failed: %v", err)
			return err
		}
		iterations++

		if s.config.MaxIterations > 0 && iterations >= s.config.MaxIterations {
			logger.Info("Monitoring finished after %d iterations", iterations)
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Info("Monitoring stopped after %d iterations", iterations)
			return nil
		case <-s.after(s.config.Delay):
		}
	}
}
