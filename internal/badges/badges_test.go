package badges

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

func rec(y int, m time.Month, d int, resort string) skiday.Record {
	return skiday.Record{Date: skiday.NewDay(y, m, d), Resort: resort}
}

func has(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestEvaluateEmpty(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	assert.Empty(t, c.Evaluate(nil))
}

func TestEvaluateFirstDayAndMonths(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	got := c.Evaluate([]skiday.Record{
		rec(2024, time.November, 29, "Killington"),
		rec(2025, time.April, 12, "Sugarbush"),
	})

	assert.True(t, has(got, "first_day"))
	assert.True(t, has(got, "early_bird"))
	assert.True(t, has(got, "spring_sender"))
	assert.False(t, has(got, "dedicated"))
}

func TestPowderHoundThreshold(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	days := make([]skiday.Record, 0, 5)
	for i := 1; i <= 4; i++ {
		r := rec(2025, time.January, i, "Stowe")
		r.Conditions = "Powder"
		days = append(days, r)
	}
	assert.False(t, has(c.Evaluate(days), "powder_hound"))

	r := rec(2025, time.January, 9, "Stowe")
	r.Conditions = "Powder"
	days = append(days, r)
	assert.True(t, has(c.Evaluate(days), "powder_hound"))

	custom := DefaultThresholds
	custom.PowderHoundDays = 3
	assert.True(t, has(NewCatalog(custom).Evaluate(days[:3]), "powder_hound"))
}

func TestWeekendWarrior(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	var days []skiday.Record
	// January 2025: the 4th is a Saturday.
	for _, d := range []int{4, 5, 11, 12, 18, 19, 25, 26} {
		days = append(days, rec(2025, time.January, d, "Stowe"))
	}
	days = append(days, rec(2025, time.February, 1, "Stowe"))
	days = append(days, rec(2025, time.January, 6, "Stowe")) // Monday
	assert.False(t, has(c.Evaluate(days), "weekend_warrior"))

	days = append(days, rec(2025, time.February, 2, "Stowe"))
	assert.True(t, has(c.Evaluate(days), "weekend_warrior"))
}

func TestStormColdAndExplorer(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	storm := rec(2025, time.January, 2, "Jay Peak")
	storm.Snowfall = 12
	cold := rec(2025, time.January, 3, "Stowe")
	cold.Temperature = skiday.ParseTemperature("-2")
	unreadable := rec(2025, time.January, 4, "Bolton Valley")
	unreadable.Temperature = skiday.ParseTemperature("freezing")

	got := c.Evaluate([]skiday.Record{storm, cold, unreadable,
		rec(2025, time.January, 5, "Smugglers Notch"),
		rec(2025, time.January, 6, "Sugarbush"),
	})
	assert.True(t, has(got, "storm_chaser"))
	assert.True(t, has(got, "cold_warrior"))
	assert.True(t, has(got, "explorer"))

	got = c.Evaluate([]skiday.Record{unreadable})
	assert.False(t, has(got, "cold_warrior"))
}

func TestLoyalLocalAndCentury(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	var days []skiday.Record
	start := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		d := start.AddDate(0, 0, i)
		resort := "Stowe"
		if i < 20 {
			resort = "Bolton Valley"
		}
		days = append(days, rec(d.Year(), d.Month(), d.Day(), resort))
	}

	got := c.Evaluate(days)
	assert.True(t, has(got, "century_club"))
	assert.True(t, has(got, "loyal_local"))
	assert.True(t, has(got, "bolton_local"))
	assert.True(t, has(got, "dedicated"))
	assert.False(t, has(c.Evaluate(days[:99]), "century_club"))
}

func TestWithinWindow(t *testing.T) {
	spread := []skiday.Record{
		rec(2025, time.January, 20, "Stowe"),
		rec(2025, time.January, 1, "Stowe"),
		rec(2025, time.January, 10, "Stowe"),
	}
	assert.False(t, WithinWindow(spread, 3, 7))

	tight := append(spread, rec(2025, time.January, 14, "Stowe"), rec(2025, time.January, 16, "Stowe"))
	assert.True(t, WithinWindow(tight, 3, 7))

	// A span of exactly seven days does not fit a seven-day window.
	edge := []skiday.Record{
		rec(2025, time.January, 1, "Stowe"),
		rec(2025, time.January, 4, "Stowe"),
		rec(2025, time.January, 8, "Stowe"),
	}
	assert.False(t, WithinWindow(edge, 3, 7))
	assert.True(t, WithinWindow(edge, 3, 8))
	assert.False(t, WithinWindow(edge[:2], 3, 7))
}

func TestNewlyEarnedAndMerge(t *testing.T) {
	prev := []string{"first_day", "explorer"}
	eval := []string{"first_day", "storm_chaser"}

	assert.Equal(t, []string{"storm_chaser"}, NewlyEarned(eval, prev))
	assert.Equal(t, []string{"first_day", "explorer", "storm_chaser"}, Merge(prev, eval))
	assert.Empty(t, NewlyEarned(prev, prev))
}

func TestBadgesStayEarnedAfterDeletion(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	storm := rec(2025, time.January, 2, "Jay Peak")
	storm.Snowfall = 14

	earned := Merge(nil, c.Evaluate([]skiday.Record{storm}))
	require.True(t, has(earned, "storm_chaser"))

	// The storm day is deleted; the predicate no longer holds.
	afterDelete := c.Evaluate(nil)
	assert.False(t, has(afterDelete, "storm_chaser"))

	earned = Merge(earned, afterDelete)
	assert.True(t, has(earned, "storm_chaser"))
	assert.True(t, has(earned, "first_day"))

	for _, s := range c.Statuses(nil, earned) {
		if s.ID == "storm_chaser" {
			assert.True(t, s.Earned)
		}
		if s.ID == "century_club" {
			assert.False(t, s.Earned)
		}
	}
}

func TestLookup(t *testing.T) {
	c := NewCatalog(DefaultThresholds)
	b, ok := c.Lookup("explorer")
	require.True(t, ok)
	assert.Equal(t, "Mountain Explorer", b.Name)
	assert.Equal(t, "5 different resorts", b.Description)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}
