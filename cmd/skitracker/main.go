package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/ski-day-tracker/internal/api/http"
	"github.com/i474232898/ski-day-tracker/internal/badges"
	"github.com/i474232898/ski-day-tracker/internal/config"
	"github.com/i474232898/ski-day-tracker/internal/log"
	"github.com/i474232898/ski-day-tracker/internal/metrics"
	"github.com/i474232898/ski-day-tracker/internal/notify"
	"github.com/i474232898/ski-day-tracker/internal/roi"
	"github.com/i474232898/ski-day-tracker/internal/scheduler"
	"github.com/i474232898/ski-day-tracker/internal/store"
	"github.com/i474232898/ski-day-tracker/internal/tracker"
	"github.com/i474232898/ski-day-tracker/internal/weather"
	"github.com/i474232898/ski-day-tracker/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.LogDebug); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewSQLiteStore(ctx, cfg.DBPath, cfg.Roster)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()
	db.SetLogger(log.Named("store"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("skitracker", reg)

	catalog := weather.DefaultCatalog()
	if cfg.ResortsFile != "" {
		if catalog, err = weather.LoadCatalog(cfg.ResortsFile); err != nil {
			logger.Fatalf("failed to load resorts: %v", err)
		}
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	var provider weather.ForecastProvider
	switch cfg.WeatherProvider {
	case config.ProviderOpenMeteo:
		provider = providers.NewOpenMeteoProvider(httpClient)
	default:
		provider = providers.NewOpenWeatherProvider(httpClient)
	}

	var notifier weather.AlertNotifier
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, log.Named("telegram"))
		if err != nil {
			logger.Fatalf("failed to start telegram notifier: %v", err)
		}
		notifier = tg
	}

	weatherSvc := weather.NewService(weather.ServiceConfig{
		Provider:      provider,
		Catalog:       catalog,
		Settings:      db,
		Reports:       db,
		Cache:         weather.NewForecastCache(cfg.ForecastCacheTTL),
		Budget:        weather.NewCallBudget(cfg.DailyCallBudget),
		Notifier:      notifier,
		Metrics:       m,
		Logger:        log.Named("weather"),
		DefaultAPIKey: cfg.OpenWeatherAPIKey,
	})

	thresholds := badges.DefaultThresholds
	thresholds.PowderHoundDays = cfg.PowderHoundDays
	tr := tracker.New(tracker.Config{
		Store:   db,
		Badges:  badges.NewCatalog(thresholds),
		Pricing: roi.Pricing{PassPrice: cfg.PassPrice, DayPrice: cfg.DayTicketPrice},
		Metrics: m,
		Logger:  log.Named("tracker"),
	})

	sched := scheduler.New(weatherSvc, cfg.AlertCheckInterval, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		logger.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp("ski-day-tracker")
	app.Use(fiberlogger.New())
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Tracker:  tr,
		Weather:  weatherSvc,
		Metrics:  m,
		Gatherer: reg,
	})

	go func() {
		logger.Infow("listening", "port", cfg.Port, "provider", provider.Name(), "skiers", cfg.Roster)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
}
