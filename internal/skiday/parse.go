package skiday

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Temperature keeps the text a skier typed together with its integer
// reading. Valid is false when the text has no leading integer; such values
// never take part in numeric comparisons.
type Temperature struct {
	Raw   string
	Value int
	Valid bool
}

// ParseTemperature reads the leading integer of s ("-5F" is -5, "12.7" is
// 12, "cold" is invalid).
func ParseTemperature(s string) Temperature {
	t := Temperature{Raw: s}
	trimmed := strings.TrimSpace(s)

	end := 0
	if end < len(trimmed) && (trimmed[end] == '-' || trimmed[end] == '+') {
		end++
	}
	digits := end
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == digits {
		return t
	}

	v, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return t
	}
	t.Value = v
	t.Valid = true
	return t
}

// Below reports whether t is a valid reading strictly below v.
func (t Temperature) Below(v int) bool {
	return t.Valid && t.Value < v
}

func (t Temperature) String() string {
	return t.Raw
}

func (t Temperature) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}

// UnmarshalJSON accepts both the stored text form and bare numbers written
// by older clients.
func (t *Temperature) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return err
		}
		s = n.String()
	}
	*t = ParseTemperature(s)
	return nil
}

// ParseSnowfall converts free text to inches. Anything that is not a finite
// non-negative number is 0.
func ParseSnowfall(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// DayInput is the raw form submitted when creating or editing a ski day.
type DayInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Resort      string `json:"resort" validate:"required"`
	Conditions  string `json:"conditions"`
	Snowfall    string `json:"snowfall"`
	Temperature string `json:"temperature"`
	Weather     string `json:"weather"`
	Runs        string `json:"runs"`
	Notes       string `json:"notes"`
}

// Validate checks the required fields.
func (in DayInput) Validate() error {
	return validate.Struct(in)
}

// Record converts validated input into a record with the given id.
func (in DayInput) Record(id int64) (Record, error) {
	if err := in.Validate(); err != nil {
		return Record{}, err
	}
	day, err := ParseDay(in.Date)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:          id,
		Date:        day,
		Resort:      strings.TrimSpace(in.Resort),
		Conditions:  strings.TrimSpace(in.Conditions),
		Snowfall:    ParseSnowfall(in.Snowfall),
		Temperature: ParseTemperature(in.Temperature),
		Weather:     in.Weather,
		Runs:        in.Runs,
		Notes:       in.Notes,
	}, nil
}
