// Package roi estimates what a shared Bolton Valley season pass is worth to
// each skier.
package roi

import (
	"errors"
	"math"
	"sort"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

const (
	DefaultPassPrice = 599.0
	DefaultDayPrice  = 89.0
)

var ErrInvalidPricing = errors.New("pass price and day price must be positive")

// Pricing holds the season pass price and the single-day ticket it is
// compared against.
type Pricing struct {
	PassPrice float64 `json:"passPrice"`
	DayPrice  float64 `json:"dayPrice"`
}

func DefaultPricing() Pricing {
	return Pricing{PassPrice: DefaultPassPrice, DayPrice: DefaultDayPrice}
}

func (p Pricing) Validate() error {
	if !positiveFinite(p.PassPrice) || !positiveFinite(p.DayPrice) {
		return ErrInvalidPricing
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// UserROI is one skier's share of the pass.
type UserROI struct {
	Name       string   `json:"name"`
	BoltonDays int      `json:"boltonDays"`
	Value      float64  `json:"value"`
	Share      float64  `json:"share"`
	Savings    float64  `json:"savings"`
	CostPerDay *float64 `json:"costPerDay"`
}

// Report is the full pass breakdown.
type Report struct {
	Pricing         Pricing   `json:"pricing"`
	Users           []UserROI `json:"users"`
	TotalDays       int       `json:"totalDays"`
	TotalValue      float64   `json:"totalValue"`
	TotalSavings    float64   `json:"totalSavings"`
	BreakEvenDays   int       `json:"breakEvenDays"`
	DaysToBreakEven int       `json:"daysToBreakEven"`
	AvgCostPerDay   *float64  `json:"avgCostPerDay"`
}

// BreakEvenDays is the number of day tickets that cost as much as the pass.
func BreakEvenDays(p Pricing) int {
	return int(math.Ceil(p.PassPrice / p.DayPrice))
}

// Calculate splits the pass price evenly across every skier in state and
// compares each share with the day tickets their Bolton days would have
// cost. Pricing is assumed valid.
func Calculate(state skiday.UserState, p Pricing) Report {
	r := Report{
		Pricing:       p,
		Users:         make([]UserROI, 0, len(state.Users)),
		BreakEvenDays: BreakEvenDays(p),
	}

	share := 0.0
	if n := len(state.Users); n > 0 {
		share = p.PassPrice / float64(n)
	}

	for _, user := range state.Users {
		days := skiday.BoltonDays(state.Records(user))
		value := float64(days) * p.DayPrice
		u := UserROI{
			Name:       user,
			BoltonDays: days,
			Value:      value,
			Share:      share,
			Savings:    value - share,
		}
		if days > 0 {
			cpd := p.PassPrice / float64(days)
			u.CostPerDay = &cpd
		}
		r.Users = append(r.Users, u)
		r.TotalDays += days
	}

	sort.SliceStable(r.Users, func(i, j int) bool {
		return r.Users[i].BoltonDays > r.Users[j].BoltonDays
	})

	r.TotalValue = float64(r.TotalDays) * p.DayPrice
	r.TotalSavings = r.TotalValue - p.PassPrice
	if r.TotalDays > 0 {
		avg := p.PassPrice / float64(r.TotalDays)
		r.AvgCostPerDay = &avg
	}
	if left := r.BreakEvenDays - r.TotalDays; left > 0 {
		r.DaysToBreakEven = left
	}
	return r
}
