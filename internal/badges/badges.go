// Package badges evaluates achievement badges over a skier's ski days.
//
// Earned badges are monotonic: the evaluator only reports which predicates
// currently hold, and callers persist the union with what was earned before.
package badges

import (
	"fmt"
	"sort"
	"time"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

// Badge is one catalog entry.
type Badge struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Icon        string                     `json:"icon"`
	Check       func([]skiday.Record) bool `json:"-"`
}

// Thresholds are the tunable constants of the catalog.
type Thresholds struct {
	PowderHoundDays  int
	WeekendDays      int
	ExplorerResorts  int
	StormInches      float64
	ColdBelowF       int
	CenturyDays      int
	LoyalLocalDays   int
	ConsistentDays   int
	ConsistentWindow int
	DedicatedMonths  []time.Month
}

// DefaultThresholds are the canonical values.
var DefaultThresholds = Thresholds{
	PowderHoundDays:  5,
	WeekendDays:      10,
	ExplorerResorts:  5,
	StormInches:      12,
	ColdBelowF:       0,
	CenturyDays:      100,
	LoyalLocalDays:   20,
	ConsistentDays:   3,
	ConsistentWindow: 7,
	DedicatedMonths:  []time.Month{time.December, time.January, time.February, time.March},
}

// Catalog is the fixed, ordered table of badges.
type Catalog struct {
	badges []Badge
	byID   map[string]Badge
}

// NewCatalog builds the badge table from t.
func NewCatalog(t Thresholds) *Catalog {
	list := []Badge{
		{ID: "first_day", Name: "First Tracks", Description: "Log your first ski day", Icon: "🎿",
			Check: func(days []skiday.Record) bool { return len(days) > 0 }},
		{ID: "powder_hound", Name: "Powder Hound", Description: plural(t.PowderHoundDays, "powder day"), Icon: "❄️",
			Check: func(days []skiday.Record) bool { return skiday.PowderDays(days) >= t.PowderHoundDays }},
		{ID: "weekend_warrior", Name: "Weekend Warrior", Description: plural(t.WeekendDays, "weekend day"), Icon: "🏔️",
			Check: func(days []skiday.Record) bool { return count(days, skiday.Record.IsWeekend) >= t.WeekendDays }},
		{ID: "early_bird", Name: "Early Bird", Description: "Ski in November", Icon: "🌅",
			Check: inMonth(time.November)},
		{ID: "spring_sender", Name: "Spring Sender", Description: "Ski in April", Icon: "🌸",
			Check: inMonth(time.April)},
		{ID: "explorer", Name: "Mountain Explorer", Description: plural(t.ExplorerResorts, "different resort"), Icon: "🗺️",
			Check: func(days []skiday.Record) bool { return skiday.DistinctResorts(days) >= t.ExplorerResorts }},
		{ID: "storm_chaser", Name: "Storm Chaser", Description: "Ski a 12\"+ storm", Icon: "🌨️",
			Check: func(days []skiday.Record) bool {
				return count(days, func(r skiday.Record) bool { return r.Snowfall >= t.StormInches }) > 0
			}},
		{ID: "cold_warrior", Name: "Cold Warrior", Description: "Ski below 0°F", Icon: "🥶",
			Check: func(days []skiday.Record) bool {
				return count(days, func(r skiday.Record) bool { return r.Temperature.Below(t.ColdBelowF) }) > 0
			}},
		{ID: "century_club", Name: "Century Club", Description: plural(t.CenturyDays, "ski day"), Icon: "💯",
			Check: func(days []skiday.Record) bool { return len(days) >= t.CenturyDays }},
		{ID: "loyal_local", Name: "Loyal Local", Description: "20 days at one resort", Icon: "🏠",
			Check: func(days []skiday.Record) bool {
				for _, rc := range skiday.ResortCounts(days) {
					if rc.Visits >= t.LoyalLocalDays {
						return true
					}
				}
				return false
			}},
		{ID: "bolton_local", Name: "Bolton Local", Description: "20 days at Bolton", Icon: "🏔️",
			Check: func(days []skiday.Record) bool { return skiday.BoltonDays(days) >= t.LoyalLocalDays }},
		{ID: "consistent", Name: "Consistent", Description: "3 days in one week", Icon: "📊",
			Check: func(days []skiday.Record) bool { return WithinWindow(days, t.ConsistentDays, t.ConsistentWindow) }},
		{ID: "dedicated", Name: "Dedicated", Description: "Ski every month Dec-Mar", Icon: "🗓️",
			Check: func(days []skiday.Record) bool { return CoversMonths(days, t.DedicatedMonths) }},
	}

	c := &Catalog{badges: list, byID: make(map[string]Badge, len(list))}
	for _, b := range list {
		c.byID[b.ID] = b
	}
	return c
}

// Badges returns the catalog in display order.
func (c *Catalog) Badges() []Badge {
	return append([]Badge(nil), c.badges...)
}

// Lookup finds a badge by id.
func (c *Catalog) Lookup(id string) (Badge, bool) {
	b, ok := c.byID[id]
	return b, ok
}

// Evaluate returns the ids of every badge whose predicate holds for days,
// in catalog order. Prior state is not consulted.
func (c *Catalog) Evaluate(days []skiday.Record) []string {
	earned := []string{}
	for _, b := range c.badges {
		if b.Check(days) {
			earned = append(earned, b.ID)
		}
	}
	return earned
}

// NewlyEarned returns the evaluated ids absent from previous.
func NewlyEarned(evaluated, previous []string) []string {
	had := toSet(previous)
	out := []string{}
	for _, id := range evaluated {
		if !had[id] {
			out = append(out, id)
		}
	}
	return out
}

// Merge returns previous followed by any newly evaluated ids. Nothing in
// previous is ever dropped.
func Merge(previous, evaluated []string) []string {
	out := append([]string{}, previous...)
	return append(out, NewlyEarned(evaluated, previous)...)
}

// Status is a badge with its earned flag for display.
type Status struct {
	Badge
	Earned bool `json:"earned"`
}

// Statuses lists every badge, marking those earned either now or before.
func (c *Catalog) Statuses(days []skiday.Record, previous []string) []Status {
	earned := toSet(Merge(previous, c.Evaluate(days)))
	out := make([]Status, 0, len(c.badges))
	for _, b := range c.badges {
		out = append(out, Status{Badge: b, Earned: earned[b.ID]})
	}
	return out
}

// WithinWindow reports whether some k days fall inside a span shorter than
// window days.
func WithinWindow(days []skiday.Record, k, window int) bool {
	if k <= 0 {
		return true
	}
	dates := make([]skiday.Day, len(days))
	for i, r := range days {
		dates[i] = r.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	for i := 0; i+k-1 < len(dates); i++ {
		if dates[i].DaysUntil(dates[i+k-1]) < window {
			return true
		}
	}
	return false
}

// CoversMonths reports whether days include at least one date in each month.
func CoversMonths(days []skiday.Record, months []time.Month) bool {
	seen := make(map[time.Month]bool, 12)
	for _, r := range days {
		seen[r.Date.Month()] = true
	}
	for _, m := range months {
		if !seen[m] {
			return false
		}
	}
	return true
}

func inMonth(m time.Month) func([]skiday.Record) bool {
	return func(days []skiday.Record) bool {
		return count(days, func(r skiday.Record) bool { return r.Date.Month() == m }) > 0
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func count(days []skiday.Record, pred func(skiday.Record) bool) int {
	n := 0
	for _, r := range days {
		if pred(r) {
			n++
		}
	}
	return n
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
