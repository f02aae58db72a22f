package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

const checkTimeout = 2 * time.Minute

// AlertChecker is the part of the weather service the scheduler drives.
type AlertChecker interface {
	CheckAlerts(ctx context.Context) (weather.Report, error)
	PurgeCache() int
}

// Scheduler periodically checks powder alerts and purges stale forecasts.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   AlertChecker
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(service AlertChecker, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules both jobs and starts the underlying scheduler. The alert
// check also runs once immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.RunCheck); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Day().At("00:05").Do(s.RunPurge); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunCheck performs one alert check. Disabled alerts or a missing key are
// expected states and only logged at debug level.
func (s *Scheduler) RunCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	report, err := s.service.CheckAlerts(ctx)
	switch {
	case errors.Is(err, weather.ErrAlertsDisabled), errors.Is(err, weather.ErrNoAPIKey):
		s.logger.Debugw("scheduler: alert check skipped", "reason", err)
	case err != nil:
		s.logger.Errorw("scheduler: alert check failed", "error", err)
	default:
		s.logger.Infow("scheduler: alert check done", "report", report.ID,
			"alerts", len(report.Alerts), "fromCache", report.FromCache)
	}
}

// RunPurge drops expired cached forecasts.
func (s *Scheduler) RunPurge() {
	n := s.service.PurgeCache()
	s.logger.Debugw("scheduler: forecast cache purged", "removed", n)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
