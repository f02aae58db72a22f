package weather

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// NextWeekend returns the next Saturday strictly after now's date and the
// Monday midnight that ends the weekend, both in now's location. On a
// Saturday the following Saturday is returned.
func NextWeekend(now time.Time) (start, end time.Time) {
	daysUntil := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	y, m, d := now.Date()
	start = time.Date(y, m, d+daysUntil, 0, 0, 0, 0, now.Location())
	end = time.Date(y, m, d+daysUntil+2, 0, 0, 0, 0, now.Location())
	return start, end
}

// WeekendForecast averages the periods that fall on the coming weekend.
// Temperature is rounded to the nearest degree and reported snow to a tenth
// of an inch; the conditions label comes from the first weekend period.
// It reports false when the forecast does not reach the weekend.
func WeekendForecast(resort MonitoredResort, periods []ForecastPeriod, now time.Time) (ForecastSummary, bool) {
	start, end := NextWeekend(now)

	var (
		temps []float64
		snow  float64
		first *ForecastPeriod
	)
	for i := range periods {
		p := periods[i]
		if p.Time.Before(start) || !p.Time.Before(end) {
			continue
		}
		if first == nil {
			first = &periods[i]
		}
		temps = append(temps, p.TemperatureF)
		snow += ExplicitSnowInches(p)
	}
	if first == nil {
		return ForecastSummary{}, false
	}

	return ForecastSummary{
		Resort:              resort.Name,
		WeekendStart:        start,
		AverageTemperatureF: math.Round(stat.Mean(temps, nil)),
		WeekendSnowInches:   math.Round(snow*10) / 10,
		ConditionsLabel:     first.Category,
	}, true
}
