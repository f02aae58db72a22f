package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/weather"
)

type contractStore interface {
	Load(ctx context.Context) (skiday.UserState, error)
	Append(ctx context.Context, user string, r skiday.Record) error
	Update(ctx context.Context, user string, r skiday.Record) error
	Remove(ctx context.Context, user string, id int64) error
	Replace(ctx context.Context, state skiday.UserState) error
	Subscribe(fn func(skiday.UserState)) func()
	Goals(ctx context.Context, user string) ([]goals.Goal, error)
	AddGoal(ctx context.Context, user string, g goals.Goal) error
	RemoveGoal(ctx context.Context, user string, id int64) error
	EarnedBadges(ctx context.Context, user string) ([]string, error)
	SaveEarnedBadges(ctx context.Context, user string, ids []string) error
	weather.SettingsStore
	weather.ReportStore
	Close() error
}

var roster = []string{"aiden", "jack"}

func stores(t *testing.T) map[string]contractStore {
	t.Helper()
	sqlite, err := NewSQLiteStore(context.Background(), ":memory:", roster)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]contractStore{
		"memory": NewMemoryStore(roster),
		"sqlite": sqlite,
	}
}

func day(id int64, date, resort string) skiday.Record {
	d, err := skiday.ParseDay(date)
	if err != nil {
		panic(err)
	}
	return skiday.Record{
		ID:          id,
		Date:        d,
		Resort:      resort,
		Conditions:  "Packed",
		Snowfall:    2.5,
		Temperature: skiday.ParseTemperature("18F"),
	}
}

func ids(records []skiday.Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestLoadBackfillsRoster(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			state, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, roster, state.Users)
			assert.Empty(t, state.Records("aiden"))
			assert.NotNil(t, state.Records("jack"))
		})
	}
}

func TestAppendKeepsDateOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(ctx, "aiden", day(1, "2025-01-05", "Stowe")))
			require.NoError(t, s.Append(ctx, "aiden", day(2, "2025-01-10", "Bolton Valley")))
			require.NoError(t, s.Append(ctx, "aiden", day(3, "2025-01-05", "Jay Peak")))
			require.NoError(t, s.Append(ctx, "aiden", day(4, "2024-12-28", "Okemo")))

			state, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 1, 3, 4}, ids(state.Records("aiden")))

			got := state.Records("aiden")[1]
			assert.Equal(t, "Stowe", got.Resort)
			assert.Equal(t, 18, got.Temperature.Value)
			assert.Equal(t, "18F", got.Temperature.Raw)
		})
	}
}

func TestAppendCreatesUnknownSkier(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(ctx, "zoe", day(1, "2025-01-05", "Stowe")))
			state, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"aiden", "jack", "zoe"}, state.Users)
			assert.Len(t, state.Records("zoe"), 1)
		})
	}
}

func TestUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(ctx, "jack", day(1, "2025-01-05", "Stowe")))
			require.NoError(t, s.Append(ctx, "jack", day(2, "2025-01-10", "Stowe")))

			moved := day(1, "2025-02-01", "Sugarbush")
			require.NoError(t, s.Update(ctx, "jack", moved))

			state, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2}, ids(state.Records("jack")))
			assert.Equal(t, "Sugarbush", state.Records("jack")[0].Resort)

			assert.ErrorIs(t, s.Update(ctx, "jack", day(99, "2025-01-01", "X")), ErrNotFound)
			assert.ErrorIs(t, s.Remove(ctx, "jack", 99), ErrNotFound)
			assert.ErrorIs(t, s.Remove(ctx, "nobody", 1), ErrNotFound)

			require.NoError(t, s.Remove(ctx, "jack", 1))
			state, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{2}, ids(state.Records("jack")))
		})
	}
}

func TestUpdateOntoSameDateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(ctx, "jack", day(1, "2025-01-05", "Stowe")))
			require.NoError(t, s.Append(ctx, "jack", day(2, "2025-01-10", "Stowe")))

			require.NoError(t, s.Update(ctx, "jack", day(2, "2025-01-05", "Sugarbush")))
			state, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 1}, ids(state.Records("jack")))

			require.NoError(t, s.Append(ctx, "jack", day(3, "2025-01-05", "Jay Peak")))
			require.NoError(t, s.Remove(ctx, "jack", 1))
			require.NoError(t, s.Append(ctx, "jack", day(4, "2025-01-05", "Okemo")))
			state, err = s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 3, 4}, ids(state.Records("jack")))
		})
	}
}

func TestReplaceIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Append(ctx, "aiden", day(1, "2025-01-05", "Stowe")))

			remote := skiday.UserState{Days: map[string][]skiday.Record{
				"matt": {day(7, "2025-01-01", "Okemo"), day(8, "2025-01-03", "Killington")},
			}}
			require.NoError(t, s.Replace(ctx, remote))

			state, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, state.Records("aiden"))
			assert.True(t, state.Has("jack"))
			assert.Equal(t, []int64{8, 7}, ids(state.Records("matt")))
		})
	}
}

func TestSQLiteLogsFailedReload(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, ":memory:", roster)
	require.NoError(t, err)
	defer s.Close()

	core, logs := observer.New(zap.ErrorLevel)
	s.SetLogger(zap.New(core).Sugar())

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ski_days (id, skier, day, resort) VALUES (7, 'aiden', 'not-a-date', 'Stowe')`)
	require.NoError(t, err)

	var got int
	cancel := s.Subscribe(func(skiday.UserState) { got++ })
	defer cancel()

	require.NoError(t, s.Append(ctx, "aiden", day(1, "2025-01-05", "Stowe")))
	assert.Zero(t, got)
	assert.Equal(t, 1, logs.FilterMessage("failed to reload state for subscribers").Len())
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var (
				mu   sync.Mutex
				seen []int
			)
			cancel := s.Subscribe(func(state skiday.UserState) {
				mu.Lock()
				seen = append(seen, len(state.Records("aiden")))
				mu.Unlock()
			})

			require.NoError(t, s.Append(ctx, "aiden", day(1, "2025-01-05", "Stowe")))
			require.NoError(t, s.Append(ctx, "aiden", day(2, "2025-01-06", "Stowe")))
			cancel()
			cancel()
			require.NoError(t, s.Remove(ctx, "aiden", 1))

			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, []int{1, 2}, seen)
		})
	}
}

func TestGoalsAndBadges(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			g, err := goals.New(goals.TypePowder, 5, now)
			require.NoError(t, err)
			require.NoError(t, s.AddGoal(ctx, "aiden", g))

			got, err := s.Goals(ctx, "aiden")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, g.ID, got[0].ID)
			assert.Equal(t, goals.TypePowder, got[0].Type)
			assert.True(t, g.Created.Equal(got[0].Created))

			assert.ErrorIs(t, s.RemoveGoal(ctx, "aiden", 1), ErrNotFound)
			require.NoError(t, s.RemoveGoal(ctx, "aiden", g.ID))
			got, err = s.Goals(ctx, "aiden")
			require.NoError(t, err)
			assert.Empty(t, got)

			earned, err := s.EarnedBadges(ctx, "jack")
			require.NoError(t, err)
			assert.Empty(t, earned)
			require.NoError(t, s.SaveEarnedBadges(ctx, "jack", []string{"first_day", "explorer"}))
			earned, err = s.EarnedBadges(ctx, "jack")
			require.NoError(t, err)
			assert.Equal(t, []string{"first_day", "explorer"}, earned)
		})
	}
}

func TestSettingsAndReports(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadSettings(ctx)
			assert.ErrorIs(t, err, weather.ErrNoSettings)

			want := weather.Settings{APIKey: "k", EnableAlerts: true, SnowThreshold: 8, MonitoredResorts: []string{"Stowe"}}
			require.NoError(t, s.SaveSettings(ctx, want))
			got, err := s.LoadSettings(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = s.LastReport(ctx)
			assert.ErrorIs(t, err, weather.ErrNoReport)

			checked := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
			require.NoError(t, s.SaveReport(ctx, weather.Report{ID: "a", CheckedAt: checked}))
			require.NoError(t, s.SaveReport(ctx, weather.Report{
				ID:        "b",
				CheckedAt: checked.Add(time.Hour),
				Alerts:    []weather.Alert{{Resort: "Stowe", AccumulatedSnowInches: 8, Message: "m"}},
				Failed:    []string{"Jay Peak"},
			}))

			last, err := s.LastReport(ctx)
			require.NoError(t, err)
			assert.Equal(t, "b", last.ID)
			assert.True(t, checked.Add(time.Hour).Equal(last.CheckedAt))
			require.Len(t, last.Alerts, 1)
			assert.Equal(t, "Stowe", last.Alerts[0].Resort)
			assert.Equal(t, []string{"Jay Peak"}, last.Failed)
		})
	}
}
