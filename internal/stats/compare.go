package stats

import "github.com/i474232898/ski-day-tracker/internal/skiday"

// Side names the winner of a head-to-head metric.
type Side string

const (
	SideNone Side = ""
	SideA    Side = "a"
	SideB    Side = "b"
)

// Metric is one compared value. Winner is set only when one side is
// strictly greater.
type Metric struct {
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Winner Side    `json:"winner,omitempty"`
}

func newMetric(a, b float64) Metric {
	m := Metric{A: a, B: b}
	switch {
	case a > b:
		m.Winner = SideA
	case b > a:
		m.Winner = SideB
	}
	return m
}

// Comparison is a head-to-head between two skiers.
type Comparison struct {
	UserA       string `json:"userA"`
	UserB       string `json:"userB"`
	Days        Metric `json:"days"`
	Snow        Metric `json:"snow"`
	PowderDays  Metric `json:"powderDays"`
	ResortCount Metric `json:"resortCount"`
}

// Compare puts two skiers side by side. Snow is compared at display
// precision so that totals shown as equal never produce a winner.
func Compare(state skiday.UserState, a, b string) Comparison {
	da, db := state.Records(a), state.Records(b)
	return Comparison{
		UserA:       a,
		UserB:       b,
		Days:        newMetric(float64(len(da)), float64(len(db))),
		Snow:        newMetric(RoundTenth(TotalSnowfall(da)), RoundTenth(TotalSnowfall(db))),
		PowderDays:  newMetric(float64(skiday.PowderDays(da)), float64(skiday.PowderDays(db))),
		ResortCount: newMetric(float64(skiday.DistinctResorts(da)), float64(skiday.DistinctResorts(db))),
	}
}
