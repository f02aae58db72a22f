package goals

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

func records(n int) []skiday.Record {
	out := make([]skiday.Record, n)
	for i := range out {
		out[i] = skiday.Record{ID: int64(i), Resort: "Stowe"}
	}
	return out
}

func TestNewRejectsNonPositiveTarget(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	_, err := New(TypeDays, 0, now)
	assert.True(t, errors.Is(err, ErrInvalidGoal))

	_, err = New(TypeDays, -3, now)
	assert.True(t, errors.Is(err, ErrInvalidGoal))

	_, err = New(Type("vertical"), 10, now)
	assert.True(t, errors.Is(err, ErrInvalidGoal))

	g, err := New(TypePowder, 5, now)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), g.ID)
}

func TestProgressPercent(t *testing.T) {
	g := Goal{Type: TypeDays, Target: 10}

	assert.Equal(t, 40.0, ProgressPercent(g, records(4)))

	p := Evaluate(g, records(12))
	assert.Equal(t, 120.0, p.Percent)
	assert.Equal(t, 100.0, p.DisplayPercent)
	assert.True(t, p.Complete)

	p = Evaluate(g, records(9))
	assert.False(t, p.Complete)
}

func TestCurrentByType(t *testing.T) {
	rs := []skiday.Record{
		{Resort: "Bolton Valley", Conditions: "Powder"},
		{Resort: "bolton valley", Conditions: "powder"},
		{Resort: "Stowe", Conditions: "Powder"},
		{Resort: "Stowe", Conditions: "Groomed"},
	}

	assert.Equal(t, 4, Current(Goal{Type: TypeDays, Target: 1}, rs))
	assert.Equal(t, 2, Current(Goal{Type: TypePowder, Target: 1}, rs))
	assert.Equal(t, 3, Current(Goal{Type: TypeResorts, Target: 1}, rs))
	assert.Equal(t, 2, Current(Goal{Type: TypeBolton, Target: 1}, rs))
}

func TestEvaluateAllEmptyRecords(t *testing.T) {
	got := EvaluateAll([]Goal{{Type: TypeResorts, Target: 5}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Current)
	assert.Equal(t, "Visit 5 Resorts", got[0].Label)
}
