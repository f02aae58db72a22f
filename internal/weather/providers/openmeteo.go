package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
	openMeteoTimeLayout  = "2006-01-02T15:04"
	hoursPerPeriod       = 3
	mmPerCM              = 10
)

// OpenMeteoProvider reads Open-Meteo hourly forecasts and folds them into
// 3-hour periods. It needs no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: openMeteoForecastURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff()},
		circuit: newBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

// WithBackoff overrides the retry policy.
func (p *OpenMeteoProvider) WithBackoff(b BackoffConfig) *OpenMeteoProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) RequiresAPIKey() bool {
	return false
}

type openMeteoHourly struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Snowfall    []float64 `json:"snowfall"`
		WeatherCode []int     `json:"weathercode"`
	} `json:"hourly"`
}

// FetchForecast ignores apiKey.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64, _ string) ([]weather.ForecastPeriod, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	values.Set("hourly", "temperature_2m,snowfall,weathercode")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("timezone", "UTC")
	values.Set("forecast_days", "5")

	var payload openMeteoHourly
	if err := getJSON(ctx, p.httpCfg, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}
	return bucketHourly(payload)
}

// bucketHourly groups consecutive hours into 3-hour periods. Temperature is
// averaged and snowfall summed. The bucket keeps the weather code that ranks
// highest by codeRank.
func bucketHourly(payload openMeteoHourly) ([]weather.ForecastPeriod, error) {
	h := payload.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.Snowfall) != n || len(h.WeatherCode) != n {
		return nil, fmt.Errorf("openmeteo hourly series have mismatched lengths")
	}

	periods := make([]weather.ForecastPeriod, 0, (n+hoursPerPeriod-1)/hoursPerPeriod)
	for start := 0; start < n; start += hoursPerPeriod {
		end := min(start+hoursPerPeriod, n)

		ts, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[start], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("openmeteo time %q: %w", h.Time[start], err)
		}

		code := h.WeatherCode[start]
		for _, c := range h.WeatherCode[start+1 : end] {
			if codeRank(c) > codeRank(code) {
				code = c
			}
		}

		fp := weather.ForecastPeriod{
			Time:         ts,
			TemperatureF: stat.Mean(h.Temperature[start:end], nil),
			Category:     mapOpenMeteoCondition(code).Label(),
			Description:  describeOpenMeteoCode(code),
		}
		if cm := floats.Sum(h.Snowfall[start:end]); cm > 0 {
			mm := cm * mmPerCM
			fp.SnowMM = &mm
		}
		periods = append(periods, fp)
	}
	return periods, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

// conditionRank orders conditions for a mixed bucket. Snow wins over
// everything so a snowy hour is never hidden by rain or storms.
var conditionRank = map[weather.Condition]int{
	weather.ConditionUnknown: 0,
	weather.ConditionClear:   1,
	weather.ConditionCloudy:  2,
	weather.ConditionMist:    3,
	weather.ConditionRain:    4,
	weather.ConditionStorm:   5,
	weather.ConditionSnow:    6,
}

// codeRank ranks by condition first and by code within a condition, so heavier
// snow beats lighter snow.
func codeRank(code int) int {
	return conditionRank[mapOpenMeteoCondition(code)]*1000 + code
}

func describeOpenMeteoCode(code int) string {
	switch code {
	case 71:
		return "light snow"
	case 73:
		return "snow"
	case 75:
		return "heavy snow"
	case 77:
		return "snow grains"
	case 85:
		return "light snow showers"
	case 86:
		return "heavy snow showers"
	}
	return string(mapOpenMeteoCondition(code))
}
