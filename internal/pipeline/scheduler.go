package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/relativity/pkg/types"
)

// Scheduler regenerates a report on an interval in serve mode and keeps
// the latest successful result for cheap reads.
type Scheduler struct {
	pipeline *Pipeline
	params   Params
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	latest *types.Report
}

// NewScheduler creates a scheduler for the given run parameters.
func NewScheduler(p *Pipeline, params Params, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		pipeline: p,
		params:   params,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial refresh so the first read does not wait a full interval.
	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping report scheduler")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh performs a single regeneration. A failed run keeps the
// previous report in place.
func (s *Scheduler) refresh(ctx context.Context) {
	report, err := s.pipeline.Run(ctx, s.params)
	if err != nil {
		s.logger.Error("scheduled report run failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	s.logger.Info("refreshed report",
		zap.String("assignee", s.params.Assignee),
		zap.Int("tasks", len(report.Tasks)),
	)
}

// Latest returns the most recent successful report, or nil when no run
// has succeeded yet.
func (s *Scheduler) Latest() *types.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
