package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bolton = MonitoredResort{Name: "Bolton Valley", Latitude: 44.4217, Longitude: -72.8497}

func mm(v float64) *float64 { return &v }

func snowyPeriods(start time.Time, n int) []ForecastPeriod {
	out := make([]ForecastPeriod, n)
	for i := range out {
		out[i] = ForecastPeriod{
			Time:         start.Add(time.Duration(3*i) * time.Hour),
			TemperatureF: 20,
			Category:     "Snow",
			Description:  "light snow",
			SnowMM:       mm(12.7),
		}
	}
	return out
}

func TestAssessThreshold(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	periods := snowyPeriods(now, 16)

	tests := []struct {
		threshold float64
		alert     bool
	}{
		{6, true},
		{8, true},
		{10, false},
	}
	for _, tc := range tests {
		a := Assess(bolton, periods, tc.threshold, now)
		assert.InDelta(t, 8.0, a.TotalSnowInches, 1e-9)
		assert.Equal(t, 16, a.SnowPeriods)
		if !tc.alert {
			assert.Nil(t, a.Alert, "threshold %v", tc.threshold)
			continue
		}
		require.NotNil(t, a.Alert, "threshold %v", tc.threshold)
		assert.Equal(t, 8.0, a.Alert.AccumulatedSnowInches)
		assert.Equal(t, `Bolton Valley expecting 8.0" of snow in next 48 hours!`, a.Alert.Message)
		assert.Equal(t, 20.0, a.Alert.TemperatureF)
		assert.Equal(t, "light snow", a.Alert.Conditions)
	}
}

func TestAssessOnlyCountsFirst48Hours(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	a := Assess(bolton, snowyPeriods(now, 40), 100, now)
	assert.Equal(t, AlertWindowPeriods, a.SnowPeriods)
	assert.InDelta(t, 8.0, a.TotalSnowInches, 1e-9)
}

func TestAssessNoSnow(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	a := Assess(bolton, []ForecastPeriod{{Time: now, Category: "Clear", Description: "clear sky"}}, 0, now)
	assert.Zero(t, a.SnowPeriods)
	assert.Nil(t, a.Alert)
}

func TestPeriodSnowInches(t *testing.T) {
	assert.InDelta(t, 1.0, PeriodSnowInches(ForecastPeriod{SnowMM: mm(25.4)}), 1e-9)
	assert.Equal(t, ImputedSnowInches, PeriodSnowInches(ForecastPeriod{Category: "Snow"}))
	assert.Equal(t, ImputedSnowInches, PeriodSnowInches(ForecastPeriod{Description: "Snow Showers"}))
	assert.Equal(t, ImputedSnowInches, PeriodSnowInches(ForecastPeriod{Description: "light snow", SnowMM: mm(0)}))
	assert.Zero(t, PeriodSnowInches(ForecastPeriod{Category: "Rain", Description: "moderate rain"}))
}

func TestNextWeekend(t *testing.T) {
	wed := time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC)
	start, end := NextWeekend(wed)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), end)

	sat := time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC)
	start, _ = NextWeekend(sat)
	assert.Equal(t, time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), start)
}

func TestWeekendForecast(t *testing.T) {
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	periods := []ForecastPeriod{
		{Time: time.Date(2025, 1, 10, 21, 0, 0, 0, time.UTC), TemperatureF: 5, Category: "Clear"},
		{Time: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), TemperatureF: 20, Category: "Snow", Description: "snow", SnowMM: mm(25.4)},
		{Time: time.Date(2025, 1, 11, 3, 0, 0, 0, time.UTC), TemperatureF: 21, Category: "Snow", Description: "snow"},
		{Time: time.Date(2025, 1, 12, 21, 0, 0, 0, time.UTC), TemperatureF: 25, Category: "Cloudy"},
		{Time: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), TemperatureF: 40, Category: "Clear"},
	}

	summary, ok := WeekendForecast(bolton, periods, now)
	require.True(t, ok)
	assert.Equal(t, "Bolton Valley", summary.Resort)
	assert.Equal(t, 22.0, summary.AverageTemperatureF)
	assert.Equal(t, 1.0, summary.WeekendSnowInches)
	assert.Equal(t, "Snow", summary.ConditionsLabel)

	_, ok = WeekendForecast(bolton, periods[:1], now)
	assert.False(t, ok)
}
