package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	Port   string
	DBPath string

	// Roster lists the skiers that always exist, even with no days.
	Roster []string

	OpenWeatherAPIKey string
	WeatherProvider   string
	HTTPTimeout       time.Duration

	// AlertCheckInterval controls how often powder alerts are checked.
	AlertCheckInterval time.Duration
	ForecastCacheTTL   time.Duration
	DailyCallBudget    int

	PassPrice       float64
	DayTicketPrice  float64
	PowderHoundDays int

	// ResortsFile optionally replaces the built-in resort catalog.
	ResortsFile string

	TelegramBotToken string
	TelegramChatID   int64

	LogDebug bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DBPath = getenvDefault("DB_PATH", "skitracker.db")
	cfg.Roster = parseRoster(getenvDefault("SKIERS", strings.Join(skiday.DefaultRoster, ",")))

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather))
	if cfg.WeatherProvider != ProviderOpenWeather && cfg.WeatherProvider != ProviderOpenMeteo {
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q", cfg.WeatherProvider)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AlertCheckInterval, err = getenvDuration("ALERT_CHECK_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ForecastCacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	cfg.DailyCallBudget = getenvInt("DAILY_CALL_BUDGET", 900)

	cfg.PassPrice = getenvFloat("PASS_PRICE", 599)
	cfg.DayTicketPrice = getenvFloat("DAY_TICKET_PRICE", 89)
	if cfg.PassPrice <= 0 || cfg.DayTicketPrice <= 0 {
		return nil, fmt.Errorf("PASS_PRICE and DAY_TICKET_PRICE must be positive")
	}
	cfg.PowderHoundDays = getenvInt("POWDER_HOUND_DAYS", 5)

	cfg.ResortsFile = os.Getenv("RESORTS_FILE")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.LogDebug = getenvBool("LOG_DEBUG", false)
	return cfg, nil
}

// TelegramEnabled reports whether alert notifications can be sent.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func parseRoster(v string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(v, ",") {
		name = skiday.NormalizeUser(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
