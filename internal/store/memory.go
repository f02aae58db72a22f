package store

import (
	"context"
	"sync"

	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory store. Nothing survives a
// restart.
type MemoryStore struct {
	mu sync.RWMutex

	roster   []string
	state    skiday.UserState
	goals    map[string][]goals.Goal
	badges   map[string][]string
	settings *weather.Settings
	report   *weather.Report

	hub hub
}

// NewMemoryStore creates an empty store with every roster member present.
func NewMemoryStore(roster []string) *MemoryStore {
	return &MemoryStore{
		roster: append([]string(nil), roster...),
		state:  skiday.NewUserState(roster),
		goals:  make(map[string][]goals.Goal),
		badges: make(map[string][]string),
	}
}

// Load returns a snapshot of every skier's days.
func (s *MemoryStore) Load(_ context.Context) (skiday.UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

// Append adds a ski day, creating the skier when unknown.
func (s *MemoryStore) Append(_ context.Context, user string, r skiday.Record) error {
	s.mu.Lock()
	if !s.state.Has(user) {
		s.state.Days[user] = []skiday.Record{}
		s.state.Backfill(s.roster)
	}
	days := append(s.state.Days[user], r)
	skiday.SortDays(days)
	s.state.Days[user] = days
	snap := s.state.Clone()
	s.mu.Unlock()

	s.hub.publish(snap)
	return nil
}

// Update replaces the ski day with r's id.
func (s *MemoryStore) Update(_ context.Context, user string, r skiday.Record) error {
	s.mu.Lock()
	days, ok := s.state.Days[user]
	idx := indexOf(days, r.ID)
	if !ok || idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	days[idx] = r
	skiday.SortDays(days)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.hub.publish(snap)
	return nil
}

// Remove deletes a ski day.
func (s *MemoryStore) Remove(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	days, ok := s.state.Days[user]
	idx := indexOf(days, id)
	if !ok || idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.state.Days[user] = append(days[:idx:idx], days[idx+1:]...)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.hub.publish(snap)
	return nil
}

// Replace overwrites every skier's days with state. The last writer wins.
func (s *MemoryStore) Replace(_ context.Context, state skiday.UserState) error {
	next := state.Clone()
	for u := range next.Days {
		skiday.SortDays(next.Days[u])
	}
	next.Backfill(s.roster)

	s.mu.Lock()
	s.state = next
	snap := s.state.Clone()
	s.mu.Unlock()

	s.hub.publish(snap)
	return nil
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *MemoryStore) Subscribe(fn func(skiday.UserState)) func() {
	return s.hub.subscribe(fn)
}

func (s *MemoryStore) Goals(_ context.Context, user string) ([]goals.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]goals.Goal{}, s.goals[user]...), nil
}

func (s *MemoryStore) AddGoal(_ context.Context, user string, g goals.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[user] = append(s.goals[user], g)
	return nil
}

func (s *MemoryStore) RemoveGoal(_ context.Context, user string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs := s.goals[user]
	for i, g := range gs {
		if g.ID == id {
			s.goals[user] = append(gs[:i:i], gs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) EarnedBadges(_ context.Context, user string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.badges[user]...), nil
}

func (s *MemoryStore) SaveEarnedBadges(_ context.Context, user string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges[user] = append([]string(nil), ids...)
	return nil
}

func (s *MemoryStore) LoadSettings(_ context.Context) (weather.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return weather.Settings{}, weather.ErrNoSettings
	}
	out := *s.settings
	out.MonitoredResorts = append([]string(nil), out.MonitoredResorts...)
	return out, nil
}

func (s *MemoryStore) SaveSettings(_ context.Context, settings weather.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.MonitoredResorts = append([]string(nil), settings.MonitoredResorts...)
	s.settings = &settings
	return nil
}

func (s *MemoryStore) SaveReport(_ context.Context, r weather.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &r
	return nil
}

func (s *MemoryStore) LastReport(_ context.Context) (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return weather.Report{}, weather.ErrNoReport
	}
	return *s.report, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func indexOf(days []skiday.Record, id int64) int {
	for i, d := range days {
		if d.ID == id {
			return i
		}
	}
	return -1
}
