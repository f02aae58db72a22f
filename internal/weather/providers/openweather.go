package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/ski-day-tracker/internal/weather"
)

const openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"

var errMissingAPIKey = errors.New("openweather api key is not configured")

// OpenWeatherProvider reads the OpenWeatherMap 5 day / 3 hour forecast.
type OpenWeatherProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		baseURL: openWeatherForecastURL,
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff()},
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

// WithBackoff overrides the retry policy.
func (p *OpenWeatherProvider) WithBackoff(b BackoffConfig) *OpenWeatherProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) RequiresAPIKey() bool {
	return true
}

type openWeatherForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Snow *struct {
			ThreeH *float64 `json:"3h"`
		} `json:"snow"`
	} `json:"list"`
}

// FetchForecast returns the 3-hour periods in the order the API lists them.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, lat, lon float64, apiKey string) ([]weather.ForecastPeriod, error) {
	if apiKey == "" {
		return nil, errMissingAPIKey
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	values.Set("units", "imperial")
	values.Set("appid", apiKey)

	var payload openWeatherForecast
	if err := getJSON(ctx, p.httpCfg, p.circuit, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return nil, err
	}

	periods := make([]weather.ForecastPeriod, 0, len(payload.List))
	for _, item := range payload.List {
		fp := weather.ForecastPeriod{
			Time:         time.Unix(item.Dt, 0).UTC(),
			TemperatureF: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			fp.Category = mapOpenWeatherCondition(item.Weather[0].Main).Label()
			fp.Description = item.Weather[0].Description
		}
		if item.Snow != nil && item.Snow.ThreeH != nil {
			mm := *item.Snow.ThreeH
			fp.SnowMM = &mm
		}
		periods = append(periods, fp)
	}
	return periods, nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
