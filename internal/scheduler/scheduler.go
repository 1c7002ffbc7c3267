// Package scheduler implements SPEC_FULL.md §4.6's timer: the first
// tick runs synchronously, then the pipeline re-runs every
// tickInterval, indefinitely, until the caller's context is canceled.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/standardbeagle/perfguard/internal/model"
	"github.com/standardbeagle/perfguard/internal/pipeline"
)

// Scheduler re-arms a fixed-interval timer around a pipeline.Runner.
type Scheduler struct {
	runner       *pipeline.Runner
	rc           *model.RunContext
	tickInterval time.Duration
	logger       *zap.Logger
}

// New builds a Scheduler. A nil logger falls back to zap.NewNop.
func New(runner *pipeline.Runner, rc *model.RunContext, tickInterval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{runner: runner, rc: rc, tickInterval: tickInterval, logger: logger}
}

// Run starts the scheduler loop: the first tick executes immediately
// and synchronously (so a caller, e.g. a test, observes its effects
// before Run returns control via ctx cancellation), then a tick fires
// every tickInterval until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("running first tick", zap.Duration("tick_interval", s.tickInterval))
	s.runner.Tick(ctx, s.rc)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.logger.Info("running tick")
			s.runner.Tick(ctx, s.rc)
		}
	}
}
