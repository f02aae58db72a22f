// Package stats computes per-skier and cross-skier aggregates from a
// snapshot of the record store.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

// TotalDays is the number of logged days.
func TotalDays(records []skiday.Record) int {
	return len(records)
}

// TotalSnowfall sums snowfall in inches.
func TotalSnowfall(records []skiday.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	snow := make([]float64, len(records))
	for i, r := range records {
		snow[i] = r.Snowfall
	}
	return floats.Sum(snow)
}

// RoundTenth rounds to one decimal place for display.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Summary is the per-skier header shown above the day list.
type Summary struct {
	TotalDays     int     `json:"totalDays"`
	TotalSnowfall float64 `json:"totalSnowfall"`
}

func Summarize(records []skiday.Record) Summary {
	return Summary{
		TotalDays:     TotalDays(records),
		TotalSnowfall: RoundTenth(TotalSnowfall(records)),
	}
}

// LeaderEntry is one row of the season leaderboard.
type LeaderEntry struct {
	Name        string  `json:"name"`
	Days        int     `json:"days"`
	Snow        float64 `json:"snow"`
	ResortCount int     `json:"resortCount"`
	PowderDays  int     `json:"powderDays"`
}

// Leaderboard ranks skiers by days logged. Skiers with the same count keep
// roster order.
func Leaderboard(state skiday.UserState) []LeaderEntry {
	out := make([]LeaderEntry, 0, len(state.Users))
	for _, user := range state.Users {
		days := state.Records(user)
		out = append(out, LeaderEntry{
			Name:        user,
			Days:        len(days),
			Snow:        TotalSnowfall(days),
			ResortCount: skiday.DistinctResorts(days),
			PowderDays:  skiday.PowderDays(days),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Days > out[j].Days
	})
	return out
}

// MostVisitedMountains counts visits per resort across every skier, most
// visited first. Ties keep first-seen order.
func MostVisitedMountains(state skiday.UserState) []skiday.ResortCount {
	var all []skiday.Record
	for _, user := range state.Users {
		all = append(all, state.Records(user)...)
	}
	counts := skiday.ResortCounts(all)
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Visits > counts[j].Visits
	})
	if counts == nil {
		counts = []skiday.ResortCount{}
	}
	return counts
}

// DayRef is a record together with the skier who logged it.
type DayRef struct {
	User   string        `json:"user"`
	Record skiday.Record `json:"record"`
}

// ExtremeDays holds the deepest and coldest days across every skier. Either
// may be nil when no record qualifies.
type ExtremeDays struct {
	Deepest *DayRef `json:"deepest"`
	Coldest *DayRef `json:"coldest"`
}

// Extremes finds the day with the most snowfall and the day with the lowest
// readable temperature. Days without snowfall never count as deepest and
// unreadable temperatures never count as coldest. The first day encountered
// wins a tie.
func Extremes(state skiday.UserState) ExtremeDays {
	var out ExtremeDays
	for _, user := range state.Users {
		for _, r := range state.Records(user) {
			if r.Snowfall > 0 && (out.Deepest == nil || r.Snowfall > out.Deepest.Record.Snowfall) {
				out.Deepest = &DayRef{User: user, Record: r}
			}
			if r.Temperature.Valid && (out.Coldest == nil || r.Temperature.Value < out.Coldest.Record.Temperature.Value) {
				out.Coldest = &DayRef{User: user, Record: r}
			}
		}
	}
	return out
}
