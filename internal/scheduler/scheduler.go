// Package scheduler runs the feed pipeline on a fixed wall-clock interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner is one full pass over all registered feeds.
type Runner interface {
	ProcessAll(ctx context.Context) error
}

// Scheduler invokes a Runner once immediately and then on every tick, for
// the lifetime of the process. A slow tick delays the next one; overlapping
// ticks cannot happen.
type Scheduler struct {
	runner Runner
	log    *slog.Logger
	tick   time.Duration
}

// New creates a Scheduler with the default 5-minute interval.
func New(runner Runner, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		log:    log,
		tick:   5 * time.Minute,
	}
}

// SetTickInterval overrides the default check interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the polling loop, blocking until ctx is cancelled. Tick errors
// are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("rss scheduler started", "interval", s.tick)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("rss scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.ProcessAll(ctx); err != nil {
		s.log.Error("tick finished with errors", "error", err)
	}
}
