package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/ski-day-tracker/internal/metrics"
)

const (
	DefaultFetchConcurrency = 4

	noticeCached  = "Using cached data (API limit reached)"
	noticePartial = "Partial results: %d of %d resorts could not be checked"
)

// AlertNotifier is told about the alerts of every completed check.
type AlertNotifier interface {
	NotifyAlerts(ctx context.Context, alerts []Alert) error
}

// ServiceConfig wires a Service. Provider, Settings and Reports are
// required; everything else has a default.
type ServiceConfig struct {
	Provider    ForecastProvider
	Catalog     Catalog
	Settings    SettingsStore
	Reports     ReportStore
	Cache       *ForecastCache
	Budget      *CallBudget
	Notifier    AlertNotifier
	Metrics     *metrics.Collector
	Logger      *zap.SugaredLogger
	Concurrency int
	Now         func() time.Time

	// DefaultAPIKey seeds the settings used until a skier saves their own.
	DefaultAPIKey string
}

// Service runs alert checks across the monitored resorts, caching forecasts
// and spending the daily call budget.
type Service struct {
	provider    ForecastProvider
	catalog     Catalog
	settings    SettingsStore
	reports     ReportStore
	cache       *ForecastCache
	budget      *CallBudget
	notifier    AlertNotifier
	metrics     *metrics.Collector
	logger      *zap.SugaredLogger
	concurrency int
	now         func() time.Time
	defaultKey  string
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		provider:    cfg.Provider,
		catalog:     cfg.Catalog,
		settings:    cfg.Settings,
		reports:     cfg.Reports,
		cache:       cfg.Cache,
		budget:      cfg.Budget,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
		now:         cfg.Now,
		defaultKey:  cfg.DefaultAPIKey,
	}
	if s.catalog == nil {
		s.catalog = DefaultCatalog()
	}
	if s.cache == nil {
		s.cache = NewForecastCache(DefaultCacheTTL)
	}
	if s.budget == nil {
		s.budget = NewCallBudget(DefaultDailyBudget)
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultFetchConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Catalog returns the resorts that may be monitored.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Settings returns the shared weather settings, or the defaults when none
// were ever saved.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	settings, err := s.settings.LoadSettings(ctx)
	if errors.Is(err, ErrNoSettings) {
		settings = DefaultSettings(s.catalog)
		settings.APIKey = s.defaultKey
		return settings, nil
	}
	return settings, err
}

// SaveSettings validates and stores the shared weather settings.
func (s *Service) SaveSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if _, unknown := s.catalog.Select(settings.MonitoredResorts); len(unknown) > 0 {
		return fmt.Errorf("%w: unknown resorts %v", ErrInvalidSettings, unknown)
	}
	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save weather settings: %w", err)
	}
	return nil
}

// LastReport returns the last persisted alert report.
func (s *Service) LastReport(ctx context.Context) (Report, error) {
	return s.reports.LastReport(ctx)
}

// PurgeCache drops expired cached forecasts.
func (s *Service) PurgeCache() int {
	return s.cache.Purge(s.now())
}

type fetchResult struct {
	periods []ForecastPeriod
	ok      bool
}

// CheckAlerts assesses every monitored resort and persists the report.
// A resort whose forecast cannot be fetched is listed in Report.Failed and
// does not abort the others.
func (s *Service) CheckAlerts(ctx context.Context) (Report, error) {
	timer := s.metrics.AlertCheckTimer()
	defer timer.ObserveDuration()

	settings, err := s.Settings(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load weather settings: %w", err)
	}
	if s.provider.RequiresAPIKey() && settings.APIKey == "" {
		return Report{}, ErrNoAPIKey
	}
	if !settings.EnableAlerts {
		return Report{}, ErrAlertsDisabled
	}

	now := s.now()
	resorts, unknown := s.catalog.Select(settings.MonitoredResorts)
	for _, name := range unknown {
		s.logger.Warnw("monitored resort not in catalog", "resort", name)
	}

	results := make([]fetchResult, len(resorts))
	var pending []int
	for i, r := range resorts {
		if periods, ok := s.cache.Get(r.Name, now); ok {
			s.metrics.RecordCacheHit()
			results[i] = fetchResult{periods: periods, ok: true}
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 && s.budget.Remaining(now) <= 0 {
		s.logger.Warnw("daily forecast budget exhausted, serving last report")
		return s.cachedReport(ctx)
	}

	var (
		fetch     []int
		overspent bool
	)
	for _, i := range pending {
		if !s.budget.Take(now) {
			overspent = true
			break
		}
		fetch = append(fetch, i)
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, i := range fetch {
		i := i
		r := resorts[i]
		g.Go(func() error {
			periods, err := s.provider.FetchForecast(ctx, r.Latitude, r.Longitude, settings.APIKey)
			if err != nil {
				s.metrics.RecordFetch(s.provider.Name(), "error")
				s.logger.Warnw("forecast fetch failed", "provider", s.provider.Name(), "resort", r.Name, "error", err)
				return nil
			}
			s.metrics.RecordFetch(s.provider.Name(), "ok")
			s.cache.Put(r.Name, periods, now)
			results[i] = fetchResult{periods: periods, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		ID:        uuid.NewString(),
		CheckedAt: now.UTC(),
		Alerts:    []Alert{},
		Forecasts: []ForecastSummary{},
	}
	for i, r := range resorts {
		if !results[i].ok {
			report.Failed = append(report.Failed, r.Name)
			continue
		}
		a := Assess(r, results[i].periods, settings.SnowThreshold, now)
		switch {
		case a.Alert != nil:
			s.logger.Infow("powder alert", "resort", r.Name, "inches", a.Alert.AccumulatedSnowInches)
			s.metrics.RecordAlert(r.Name)
			report.Alerts = append(report.Alerts, *a.Alert)
		case a.SnowPeriods > 0:
			s.logger.Debugw("snow below alert threshold", "resort", r.Name,
				"inches", a.TotalSnowInches, "threshold", settings.SnowThreshold)
		}
		if a.Weekend != nil {
			report.Forecasts = append(report.Forecasts, *a.Weekend)
		}
	}
	if len(report.Failed) > 0 {
		report.Notice = fmt.Sprintf(noticePartial, len(report.Failed), len(resorts))
		if overspent {
			report.Notice += "; daily API limit reached"
		}
	}
	s.metrics.SetBudgetRemaining(s.budget.Remaining(now))

	if err := s.reports.SaveReport(ctx, report); err != nil {
		s.logger.Errorw("failed to persist alert report", "report", report.ID, "error", err)
	}
	if s.notifier != nil && len(report.Alerts) > 0 {
		if err := s.notifier.NotifyAlerts(ctx, report.Alerts); err != nil {
			s.logger.Warnw("alert notification failed", "error", err)
		}
	}
	s.logger.Infow("alert check complete", "report", report.ID,
		"resorts", len(resorts), "alerts", len(report.Alerts), "failed", len(report.Failed))
	return report, nil
}

func (s *Service) cachedReport(ctx context.Context) (Report, error) {
	last, err := s.reports.LastReport(ctx)
	if errors.Is(err, ErrNoReport) {
		return Report{}, ErrBudgetExhausted
	}
	if err != nil {
		return Report{}, fmt.Errorf("load last report: %w", err)
	}
	last.FromCache = true
	last.Notice = noticeCached
	return last, nil
}
