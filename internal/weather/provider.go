package weather

import (
	"context"
)

// ForecastProvider abstracts a multi-day forecast source (e.g. OpenWeatherMap,
// Open-Meteo). Periods are returned in ascending time order.
type ForecastProvider interface {
	Name() string
	RequiresAPIKey() bool
	FetchForecast(ctx context.Context, lat, lon float64, apiKey string) ([]ForecastPeriod, error)
}

// SettingsStore persists the single shared Settings object.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// ReportStore keeps the last completed alert report so it can be served
// when the daily call budget runs out.
type ReportStore interface {
	SaveReport(ctx context.Context, r Report) error
	LastReport(ctx context.Context) (Report, error)
}
