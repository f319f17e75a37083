package usecase

import (
	"context"
	"log/slog"
	"time"

	"Cadence/internal/ports"
	"Cadence/internal/session"
)

// Reaper evicts idle sessions on a recurring schedule.
type Reaper struct {
	driver   ports.Scheduler
	sessions *session.Manager
	maxIdle  time.Duration
	logger   *slog.Logger
}

// NewReaper returns a helper to start/stop the prune job.
func NewReaper(driver ports.Scheduler, sessions *session.Manager, maxIdle time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		driver:   driver,
		sessions: sessions,
		maxIdle:  maxIdle,
		logger:   logger,
	}
}

// Start registers the prune job with the provided scheduler.
func (r *Reaper) Start(ctx context.Context) error {
	if r.driver == nil || r.sessions == nil {
		return nil
	}

	job := func(trigger time.Time) {
		removed := r.sessions.Prune(trigger, r.maxIdle)
		if len(removed) > 0 {
			r.logger.Info("pruned idle sessions", "count", len(removed), "live", r.sessions.Len())
		}
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Reaper) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}
