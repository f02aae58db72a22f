package weather

import (
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Label returns the capitalized category name used in forecast periods.
func (c Condition) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// MonitoredResort is a ski area tracked for snowfall alerts.
type MonitoredResort struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lon"`
}

// ForecastPeriod is one 3-hour bucket of a multi-day forecast.
// SnowMM is nil when the source reports no accumulation for the bucket.
type ForecastPeriod struct {
	Time         time.Time `json:"time" msgpack:"time"`
	TemperatureF float64   `json:"temperatureF" msgpack:"temperatureF"`
	Category     string    `json:"category" msgpack:"category"`
	Description  string    `json:"description" msgpack:"description"`
	SnowMM       *float64  `json:"snowMm,omitempty" msgpack:"snowMm,omitempty"`
}

// Alert is a powder alert for one resort.
type Alert struct {
	Resort                string  `json:"resort" msgpack:"resort"`
	AccumulatedSnowInches float64 `json:"accumulatedSnowInches" msgpack:"accumulatedSnowInches"`
	Message               string  `json:"message" msgpack:"message"`
	TemperatureF          float64 `json:"temperatureF" msgpack:"temperatureF"`
	Conditions            string  `json:"conditions" msgpack:"conditions"`
}

// ForecastSummary is the weekend outlook for one resort.
type ForecastSummary struct {
	Resort              string    `json:"resort" msgpack:"resort"`
	WeekendStart        time.Time `json:"weekendStart" msgpack:"weekendStart"`
	AverageTemperatureF float64   `json:"averageTemperatureF" msgpack:"averageTemperatureF"`
	WeekendSnowInches   float64   `json:"weekendSnowInches" msgpack:"weekendSnowInches"`
	ConditionsLabel     string    `json:"conditionsLabel" msgpack:"conditionsLabel"`
}

// Assessment is the engine's result for one resort.
type Assessment struct {
	Resort          MonitoredResort  `json:"resort"`
	TotalSnowInches float64          `json:"totalSnowInches"`
	SnowPeriods     int              `json:"snowPeriods"`
	Alert           *Alert           `json:"alert,omitempty"`
	Weekend         *ForecastSummary `json:"weekend,omitempty"`
}

// Report is the outcome of one alert check across all monitored resorts.
type Report struct {
	ID        string            `json:"id" msgpack:"id"`
	CheckedAt time.Time         `json:"checkedAt" msgpack:"checkedAt"`
	Alerts    []Alert           `json:"alerts" msgpack:"alerts"`
	Forecasts []ForecastSummary `json:"forecasts" msgpack:"forecasts"`
	Failed    []string          `json:"failed,omitempty" msgpack:"failed,omitempty"`
	FromCache bool              `json:"fromCache" msgpack:"fromCache"`
	Notice    string            `json:"notice,omitempty" msgpack:"notice,omitempty"`
}
