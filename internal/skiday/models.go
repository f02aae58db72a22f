package skiday

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/ski-day-tracker/internal/common"
)

// DateLayout is the wire format of a ski day's calendar date.
const DateLayout = "2006-01-02"

// PowderConditions is the conditions label that counts as a powder day.
const PowderConditions = "Powder"

// Day is a calendar date with no meaningful time of day. Values are always
// midnight UTC so that subtraction yields whole days.
type Day struct {
	time.Time
}

// NewDay truncates t to its calendar date.
func NewDay(year int, month time.Month, day int) Day {
	return Day{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day{t}, nil
}

func (d Day) String() string {
	return d.Format(DateLayout)
}

// DaysUntil returns the number of whole days from d to other.
func (d Day) DaysUntil(other Day) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is one logged ski outing.
type Record struct {
	ID          int64       `json:"id"`
	Date        Day         `json:"date"`
	Resort      string      `json:"resort"`
	Conditions  string      `json:"conditions"`
	Snowfall    float64     `json:"snowfall"`
	Temperature Temperature `json:"temperature"`
	Weather     string      `json:"weather"`
	Runs        string      `json:"runs"`
	Notes       string      `json:"notes"`
}

// IsPowder reports whether the record was logged with powder conditions.
func (r Record) IsPowder() bool {
	return r.Conditions == PowderConditions
}

// IsBolton reports whether the record was at Bolton Valley.
func (r Record) IsBolton() bool {
	return common.ContainsAnyFold(r.Resort, "bolton")
}

// IsWeekend reports whether the record's date is a Saturday or Sunday.
func (r Record) IsWeekend() bool {
	wd := r.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
