package weather

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/ski-day-tracker/internal/common"
)

const (
	// AlertWindowPeriods is 16 three-hour buckets, about 48 hours.
	AlertWindowPeriods = 16
	// ImputedSnowInches is assumed for a snowy bucket with no reported
	// accumulation.
	ImputedSnowInches = 0.5

	mmPerInch = 25.4
)

var snowKeywords = []string{"snow", "light snow", "snow showers"}

// ExplicitSnowInches converts a bucket's reported accumulation, or 0 when
// none was reported.
func ExplicitSnowInches(p ForecastPeriod) float64 {
	if p.SnowMM == nil || *p.SnowMM <= 0 {
		return 0
	}
	return *p.SnowMM / mmPerInch
}

// MentionsSnow reports whether a bucket's category or description names snow.
func MentionsSnow(p ForecastPeriod) bool {
	return common.ContainsAnyFold(p.Category, snowKeywords...) ||
		common.ContainsAnyFold(p.Description, snowKeywords...)
}

// PeriodSnowInches is the snowfall credited to one bucket: the reported
// accumulation when present, otherwise a fixed estimate if the bucket
// mentions snow.
func PeriodSnowInches(p ForecastPeriod) float64 {
	if in := ExplicitSnowInches(p); in > 0 {
		return in
	}
	if MentionsSnow(p) {
		return ImputedSnowInches
	}
	return 0
}

// AlertMessage formats the powder alert text for a resort.
func AlertMessage(resort string, inches float64) string {
	return fmt.Sprintf("%s expecting %.1f\" of snow in next 48 hours!", resort, inches)
}

// Assess totals the next 48 hours of snowfall for a resort and raises an
// alert when the total reaches threshold. It also summarizes the coming
// weekend relative to now. periods is not modified.
func Assess(resort MonitoredResort, periods []ForecastPeriod, threshold float64, now time.Time) Assessment {
	a := Assessment{Resort: resort}

	window := periods
	if len(window) > AlertWindowPeriods {
		window = window[:AlertWindowPeriods]
	}
	for _, p := range window {
		if in := PeriodSnowInches(p); in > 0 {
			a.TotalSnowInches += in
			a.SnowPeriods++
		}
	}

	if a.SnowPeriods > 0 && a.TotalSnowInches >= threshold {
		rounded := math.Round(a.TotalSnowInches*10) / 10
		alert := &Alert{
			Resort:                resort.Name,
			AccumulatedSnowInches: rounded,
			Message:               AlertMessage(resort.Name, a.TotalSnowInches),
		}
		if len(periods) > 0 {
			alert.TemperatureF = periods[0].TemperatureF
			alert.Conditions = periods[0].Description
		}
		a.Alert = alert
	}

	if summary, ok := WeekendForecast(resort, periods, now); ok {
		a.Weekend = &summary
	}
	return a
}
