package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"aiden", "jack", "matt", "mike", "reece"}, cfg.Roster)
	assert.Equal(t, ProviderOpenWeather, cfg.WeatherProvider)
	assert.Equal(t, time.Hour, cfg.ForecastCacheTTL)
	assert.Equal(t, 900, cfg.DailyCallBudget)
	assert.Equal(t, 599.0, cfg.PassPrice)
	assert.Equal(t, 89.0, cfg.DayTicketPrice)
	assert.Equal(t, 5, cfg.PowderHoundDays)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SKIERS", " Zoe, jack ,,zoe")
	t.Setenv("WEATHER_PROVIDER", "OpenMeteo")
	t.Setenv("ALERT_CHECK_INTERVAL", "5m")
	t.Setenv("PASS_PRICE", "749.5")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("LOG_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"zoe", "jack"}, cfg.Roster)
	assert.Equal(t, ProviderOpenMeteo, cfg.WeatherProvider)
	assert.Equal(t, 5*time.Minute, cfg.AlertCheckInterval)
	assert.Equal(t, 749.5, cfg.PassPrice)
	assert.Equal(t, int64(-1001), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.True(t, cfg.LogDebug)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("WEATHER_PROVIDER", "weatherapi")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WEATHER_PROVIDER", "")
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}
