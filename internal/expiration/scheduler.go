package expiration

import (
	"context"
	"log/slog"
	"time"

	"motorcover/internal/platform/metrics"
)

// Scheduler drives the Sweeper on a fixed period for the life of the
// process. Ticks never overlap: the loop runs one tick to completion, then
// sleeps. Cancellation is honored at both the tick and the sleep, and an
// in-flight batch either commits whole or not at all, so shutdown never
// leaves half-written expiration records.
type Scheduler struct {
	sweeper  *Sweeper
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewScheduler constructs a Scheduler. metrics may be nil.
func NewScheduler(sweeper *Sweeper, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Run loops until ctx is cancelled, returning ctx.Err(). A failed tick is
// logged and retried on the next period; errors never escape the loop, so
// the hosting process keeps running.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("expiration scheduler started", "interval", s.interval.String())
	for {
		s.tick(ctx)

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("expiration scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SweepTicks.Inc()
	}
	recorded, err := s.sweeper.Tick(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if s.metrics != nil {
			s.metrics.SweepTickErrors.Inc()
		}
		s.logger.Error("expiration sweep tick failed", "error", err.Error())
		return
	}
	if recorded > 0 {
		s.logger.Info("expiration sweep recorded lapsed policies", "recorded", recorded)
	}
}
