// Package goals tracks progress toward a skier's numeric season goals.
package goals

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

// Type selects what a goal counts.
type Type string

const (
	TypeDays    Type = "days"
	TypePowder  Type = "powder"
	TypeResorts Type = "resorts"
	TypeBolton  Type = "bolton"
)

// ErrInvalidGoal is returned for an unknown type or a non-positive target.
var ErrInvalidGoal = errors.New("invalid goal")

var validate = validator.New()

// Goal is a skier-defined target. Progress is always derived from the live
// records and never stored.
type Goal struct {
	ID      int64     `json:"id"`
	Type    Type      `json:"type" validate:"required,oneof=days powder resorts bolton"`
	Target  int       `json:"target" validate:"gt=0"`
	Created time.Time `json:"created"`
}

// New validates and builds a goal. The id is derived from the creation time.
func New(t Type, target int, now time.Time) (Goal, error) {
	g := Goal{
		ID:      now.UnixMilli(),
		Type:    t,
		Target:  target,
		Created: now.UTC(),
	}
	if err := validate.Struct(g); err != nil {
		return Goal{}, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}
	return g, nil
}

// Label is the heading shown on a goal card.
func (g Goal) Label() string {
	switch g.Type {
	case TypeDays:
		return fmt.Sprintf("%d Days Goal", g.Target)
	case TypePowder:
		return fmt.Sprintf("%d Powder Days", g.Target)
	case TypeResorts:
		return fmt.Sprintf("Visit %d Resorts", g.Target)
	case TypeBolton:
		return fmt.Sprintf("%d Bolton Valley Days", g.Target)
	default:
		return string(g.Type)
	}
}

// Current computes the goal's counted value from records.
func Current(g Goal, records []skiday.Record) int {
	switch g.Type {
	case TypeDays:
		return len(records)
	case TypePowder:
		return skiday.PowderDays(records)
	case TypeResorts:
		return skiday.DistinctResorts(records)
	case TypeBolton:
		return skiday.BoltonDays(records)
	default:
		return 0
	}
}

// ProgressPercent is the unclamped 100*current/target.
func ProgressPercent(g Goal, records []skiday.Record) float64 {
	if g.Target <= 0 {
		return 0
	}
	return 100 * float64(Current(g, records)) / float64(g.Target)
}

// Progress is a goal evaluated against a record snapshot.
type Progress struct {
	Goal           Goal    `json:"goal"`
	Label          string  `json:"label"`
	Current        int     `json:"current"`
	Percent        float64 `json:"percent"`
	DisplayPercent float64 `json:"displayPercent"`
	Complete       bool    `json:"complete"`
}

// Evaluate derives progress for g. DisplayPercent is clamped to [0, 100];
// completion uses the raw count.
func Evaluate(g Goal, records []skiday.Record) Progress {
	current := Current(g, records)
	pct := ProgressPercent(g, records)
	return Progress{
		Goal:           g,
		Label:          g.Label(),
		Current:        current,
		Percent:        pct,
		DisplayPercent: math.Max(0, math.Min(100, pct)),
		Complete:       current >= g.Target,
	}
}

// EvaluateAll evaluates every goal in order.
func EvaluateAll(gs []Goal, records []skiday.Record) []Progress {
	out := make([]Progress, 0, len(gs))
	for _, g := range gs {
		out = append(out, Evaluate(g, records))
	}
	return out
}
