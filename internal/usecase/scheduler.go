package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"NewsHarvest/internal/harvest"
	"NewsHarvest/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	targets  []Target
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring harvests of targets.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, targets []Target, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		driver:   driver,
		pipeline: pipeline,
		targets:  targets,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce harvests every target in order. A target that cannot start because a session is
// already running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	for _, target := range s.targets {
		if ctx.Err() != nil {
			return
		}

		status, err := s.pipeline.Run(ctx, target)
		switch {
		case errors.Is(err, harvest.ErrConflict):
			s.logger.Warn("harvest already running, target skipped", "url", target.URL, "trigger", trigger)
		case err != nil && status.SessionID == "":
			s.logger.Error("harvest failed to start", "url", target.URL, "error", err)
		case err != nil:
			s.logger.Warn("harvest finished with sink errors", "url", target.URL,
				"session", status.SessionID, "error", err)
		default:
			s.logger.Info("harvest finished", "url", target.URL, "session", status.SessionID,
				"state", status.State, "accepted", status.Accepted)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
