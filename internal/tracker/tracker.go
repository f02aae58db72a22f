// Package tracker is the application service behind every ski-day
// operation. It owns no global state: the store, badge catalog and pricing
// are injected.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/ski-day-tracker/internal/badges"
	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/metrics"
	"github.com/i474232898/ski-day-tracker/internal/roi"
	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/stats"
)

var (
	ErrInvalidDay  = errors.New("invalid ski day")
	ErrMissingUser = errors.New("skier name is required")
)

// Store persists ski days, goals and earned badges.
type Store interface {
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
}

type Config struct {
	Store   Store
	Badges  *badges.Catalog
	Pricing roi.Pricing
	Metrics *metrics.Collector
	Logger  *zap.SugaredLogger
	Now     func() time.Time
}

type Tracker struct {
	store   Store
	badges  *badges.Catalog
	pricing roi.Pricing
	metrics *metrics.Collector
	logger  *zap.SugaredLogger
	now     func() time.Time

	idMu   sync.Mutex
	lastID int64
}

func New(cfg Config) *Tracker {
	t := &Tracker{
		store:   cfg.Store,
		badges:  cfg.Badges,
		pricing: cfg.Pricing,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if t.badges == nil {
		t.badges = badges.NewCatalog(badges.DefaultThresholds)
	}
	if t.pricing == (roi.Pricing{}) {
		t.pricing = roi.DefaultPricing()
	}
	if t.logger == nil {
		t.logger = zap.NewNop().Sugar()
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// WriteResult is a saved ski day plus any badges it unlocked.
type WriteResult struct {
	Record    skiday.Record  `json:"record"`
	NewBadges []badges.Badge `json:"newBadges"`
}

// nextID hands out millisecond timestamps, bumped when two writes land in
// the same millisecond.
func (t *Tracker) nextID() int64 {
	t.idMu.Lock()
	defer t.idMu.Unlock()

	id := t.now().UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id
	return id
}

// State returns one consistent snapshot of every skier's days.
func (t *Tracker) State(ctx context.Context) (skiday.UserState, error) {
	state, err := t.store.Load(ctx)
	if err != nil {
		t.metrics.RecordStoreError("load")
		return skiday.UserState{}, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}

// Days lists a skier's days, newest first. Unknown skiers have none.
func (t *Tracker) Days(ctx context.Context, user string) ([]skiday.Record, error) {
	state, err := t.State(ctx)
	if err != nil {
		return nil, err
	}
	return state.Records(skiday.NormalizeUser(user)), nil
}

// AddDay logs a ski day and re-evaluates the skier's badges.
func (t *Tracker) AddDay(ctx context.Context, user string, in skiday.DayInput) (WriteResult, error) {
	user = skiday.NormalizeUser(user)
	if user == "" {
		return WriteResult{}, ErrMissingUser
	}
	rec, err := in.Record(t.nextID())
	if err != nil {
		return WriteResult{}, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	if err := t.store.Append(ctx, user, rec); err != nil {
		t.metrics.RecordStoreError("append")
		return WriteResult{}, fmt.Errorf("append ski day: %w", err)
	}
	t.metrics.RecordWrite("add")
	t.logger.Infow("ski day logged", "user", user, "id", rec.ID, "resort", rec.Resort, "date", rec.Date.String())

	earned, err := t.refreshBadges(ctx, user)
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Record: rec, NewBadges: earned}, nil
}

// UpdateDay replaces a ski day's fields, keeping its id.
func (t *Tracker) UpdateDay(ctx context.Context, user string, id int64, in skiday.DayInput) (WriteResult, error) {
	user = skiday.NormalizeUser(user)
	rec, err := in.Record(id)
	if err != nil {
		return WriteResult{}, fmt.Errorf("%w: %v", ErrInvalidDay, err)
	}
	if err := t.store.Update(ctx, user, rec); err != nil {
		t.metrics.RecordStoreError("update")
		return WriteResult{}, fmt.Errorf("update ski day %d: %w", id, err)
	}
	t.metrics.RecordWrite("update")
	t.logger.Infow("ski day updated", "user", user, "id", id)

	earned, err := t.refreshBadges(ctx, user)
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Record: rec, NewBadges: earned}, nil
}

// DeleteDay removes a ski day. Earned badges are kept.
func (t *Tracker) DeleteDay(ctx context.Context, user string, id int64) error {
	user = skiday.NormalizeUser(user)
	if err := t.store.Remove(ctx, user, id); err != nil {
		t.metrics.RecordStoreError("remove")
		return fmt.Errorf("delete ski day %d: %w", id, err)
	}
	t.metrics.RecordWrite("delete")
	t.logger.Infow("ski day deleted", "user", user, "id", id)
	return nil
}

// refreshBadges evaluates the skier's current days and stores the union with
// what they had already earned. It returns the badges earned just now.
func (t *Tracker) refreshBadges(ctx context.Context, user string) ([]badges.Badge, error) {
	days, err := t.Days(ctx, user)
	if err != nil {
		return nil, err
	}
	previous, err := t.store.EarnedBadges(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}

	evaluated := t.badges.Evaluate(days)
	fresh := badges.NewlyEarned(evaluated, previous)
	if len(fresh) == 0 {
		return []badges.Badge{}, nil
	}
	if err := t.store.SaveEarnedBadges(ctx, user, badges.Merge(previous, evaluated)); err != nil {
		return nil, fmt.Errorf("save earned badges: %w", err)
	}

	out := make([]badges.Badge, 0, len(fresh))
	for _, id := range fresh {
		b, _ := t.badges.Lookup(id)
		out = append(out, b)
		t.metrics.RecordBadge(id)
		t.logger.Infow("badge earned", "user", user, "badge", id)
	}
	return out, nil
}

// Badges lists the whole catalog with the skier's earned flags.
func (t *Tracker) Badges(ctx context.Context, user string) ([]badges.Status, error) {
	user = skiday.NormalizeUser(user)
	days, err := t.Days(ctx, user)
	if err != nil {
		return nil, err
	}
	previous, err := t.store.EarnedBadges(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	return t.badges.Statuses(days, previous), nil
}

func (t *Tracker) Summary(ctx context.Context, user string) (stats.Summary, error) {
	days, err := t.Days(ctx, user)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(days), nil
}

func (t *Tracker) Leaderboard(ctx context.Context) ([]stats.LeaderEntry, error) {
	state, err := t.State(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Leaderboard(state), nil
}

func (t *Tracker) Mountains(ctx context.Context) ([]skiday.ResortCount, error) {
	state, err := t.State(ctx)
	if err != nil {
		return nil, err
	}
	return stats.MostVisitedMountains(state), nil
}

func (t *Tracker) Extremes(ctx context.Context) (stats.ExtremeDays, error) {
	state, err := t.State(ctx)
	if err != nil {
		return stats.ExtremeDays{}, err
	}
	return stats.Extremes(state), nil
}

func (t *Tracker) Compare(ctx context.Context, a, b string) (stats.Comparison, error) {
	state, err := t.State(ctx)
	if err != nil {
		return stats.Comparison{}, err
	}
	return stats.Compare(state, skiday.NormalizeUser(a), skiday.NormalizeUser(b)), nil
}

// AddGoal validates and stores a new goal for the skier.
func (t *Tracker) AddGoal(ctx context.Context, user string, typ goals.Type, target int) (goals.Goal, error) {
	g, err := goals.New(typ, target, t.now())
	if err != nil {
		return goals.Goal{}, err
	}
	g.ID = t.nextID()
	if err := t.store.AddGoal(ctx, skiday.NormalizeUser(user), g); err != nil {
		return goals.Goal{}, fmt.Errorf("add goal: %w", err)
	}
	return g, nil
}

func (t *Tracker) DeleteGoal(ctx context.Context, user string, id int64) error {
	if err := t.store.RemoveGoal(ctx, skiday.NormalizeUser(user), id); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	return nil
}

// Goals reports progress on every goal against the skier's current days.
func (t *Tracker) Goals(ctx context.Context, user string) ([]goals.Progress, error) {
	user = skiday.NormalizeUser(user)
	gs, err := t.store.Goals(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	days, err := t.Days(ctx, user)
	if err != nil {
		return nil, err
	}
	return goals.EvaluateAll(gs, days), nil
}

// Pricing is the configured pass and day ticket pricing.
func (t *Tracker) Pricing() roi.Pricing {
	return t.pricing
}

// PassROI computes the season pass breakdown. A zero passPrice uses the
// configured price.
func (t *Tracker) PassROI(ctx context.Context, passPrice float64) (roi.Report, error) {
	p := t.pricing
	if passPrice != 0 {
		p.PassPrice = passPrice
	}
	if err := p.Validate(); err != nil {
		return roi.Report{}, err
	}
	state, err := t.State(ctx)
	if err != nil {
		return roi.Report{}, err
	}
	return roi.Calculate(state, p), nil
}

// ReplaceState overwrites everything with a remote document.
func (t *Tracker) ReplaceState(ctx context.Context, state skiday.UserState) error {
	if err := t.store.Replace(ctx, state); err != nil {
		t.metrics.RecordStoreError("replace")
		return fmt.Errorf("replace state: %w", err)
	}
	t.metrics.RecordWrite("replace")
	t.logger.Infow("state replaced", "users", len(state.Days))
	return nil
}

// Subscribe forwards every store change to fn.
func (t *Tracker) Subscribe(fn func(skiday.UserState)) func() {
	return t.store.Subscribe(fn)
}
