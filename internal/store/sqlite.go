package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/i474232898/ski-day-tracker/internal/goals"
	"github.com/i474232898/ski-day-tracker/internal/skiday"
	"github.com/i474232898/ski-day-tracker/internal/weather"
)

const (
	settingsKey = "weather"
	keptReports = 50
)

// SQLiteStore persists everything in a single SQLite database.
type SQLiteStore struct {
	db     *sqlx.DB
	roster []string
	hub    hub
	logger *zap.SugaredLogger
}

// NewSQLiteStore opens (creating if needed) the database at path, migrates
// the schema and makes sure every roster member exists.
func NewSQLiteStore(ctx context.Context, path string, roster []string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		roster: append([]string(nil), roster...),
		logger: zap.NewNop().Sugar(),
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	for _, u := range roster {
		if err := ensureSkier(ctx, s.db, u); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// SetLogger replaces the no-op logger the store starts with.
func (s *SQLiteStore) SetLogger(logger *zap.SugaredLogger) {
	if logger != nil {
		s.logger = logger
	}
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS skiers (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ski_days (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id INTEGER NOT NULL,
		skier TEXT NOT NULL,
		day TEXT NOT NULL,
		resort TEXT NOT NULL,
		conditions TEXT NOT NULL DEFAULT '',
		snowfall REAL NOT NULL DEFAULT 0,
		temperature TEXT NOT NULL DEFAULT '',
		weather TEXT NOT NULL DEFAULT '',
		runs TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		UNIQUE (skier, id),
		FOREIGN KEY(skier) REFERENCES skiers(name)
	);

	CREATE INDEX IF NOT EXISTS idx_ski_days_skier_position ON ski_days (skier, position);

	CREATE TABLE IF NOT EXISTS goals (
		skier TEXT NOT NULL,
		id INTEGER NOT NULL,
		type TEXT NOT NULL,
		target INTEGER NOT NULL,
		created TEXT NOT NULL,
		PRIMARY KEY (skier, id)
	);

	CREATE TABLE IF NOT EXISTS earned_badges (
		skier TEXT NOT NULL,
		badge TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (skier, badge)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alert_reports (
		id TEXT PRIMARY KEY,
		checked_at TEXT NOT NULL,
		payload BLOB NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func ensureSkier(ctx context.Context, ex sqlx.ExecerContext, name string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT OR IGNORE INTO skiers (name, position)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM skiers))`, name)
	if err != nil {
		return fmt.Errorf("ensure skier %s: %w", name, err)
	}
	return nil
}

type dayRow struct {
	Seq         int64   `db:"seq"`
	ID          int64   `db:"id"`
	Skier       string  `db:"skier"`
	Day         string  `db:"day"`
	Resort      string  `db:"resort"`
	Conditions  string  `db:"conditions"`
	Snowfall    float64 `db:"snowfall"`
	Temperature string  `db:"temperature"`
	Weather     string  `db:"weather"`
	Runs        string  `db:"runs"`
	Notes       string  `db:"notes"`
	Position    int     `db:"position"`
}

func (r dayRow) record() (skiday.Record, error) {
	day, err := skiday.ParseDay(r.Day)
	if err != nil {
		return skiday.Record{}, err
	}
	return skiday.Record{
		ID:          r.ID,
		Date:        day,
		Resort:      r.Resort,
		Conditions:  r.Conditions,
		Snowfall:    r.Snowfall,
		Temperature: skiday.ParseTemperature(r.Temperature),
		Weather:     r.Weather,
		Runs:        r.Runs,
		Notes:       r.Notes,
	}, nil
}

func rowFor(user string, r skiday.Record) dayRow {
	return dayRow{
		ID:          r.ID,
		Skier:       user,
		Day:         r.Date.String(),
		Resort:      r.Resort,
		Conditions:  r.Conditions,
		Snowfall:    r.Snowfall,
		Temperature: r.Temperature.Raw,
		Weather:     r.Weather,
		Runs:        r.Runs,
		Notes:       r.Notes,
	}
}

const insertDay = `
	INSERT INTO ski_days (id, skier, day, resort, conditions, snowfall, temperature, weather, runs, notes, position)
	VALUES (:id, :skier, :day, :resort, :conditions, :snowfall, :temperature, :weather, :runs, :notes, :position)`

// Load returns every skier's days, newest first. Days on the same date keep
// their relative order from before the last write, so an edited day stays
// where it was.
func (s *SQLiteStore) Load(ctx context.Context) (skiday.UserState, error) {
	var users []string
	if err := s.db.SelectContext(ctx, &users, `SELECT name FROM skiers ORDER BY position`); err != nil {
		return skiday.UserState{}, fmt.Errorf("load skiers: %w", err)
	}

	var rows []dayRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM ski_days ORDER BY skier, position, seq`); err != nil {
		return skiday.UserState{}, fmt.Errorf("load ski days: %w", err)
	}

	state := skiday.UserState{Users: users, Days: make(map[string][]skiday.Record, len(users))}
	for _, u := range users {
		state.Days[u] = []skiday.Record{}
	}
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return skiday.UserState{}, fmt.Errorf("ski day %d: %w", row.ID, err)
		}
		state.Days[row.Skier] = append(state.Days[row.Skier], rec)
	}
	state.Backfill(s.roster)
	return state, nil
}

// Append adds a ski day, creating the skier when unknown.
func (s *SQLiteStore) Append(ctx context.Context, user string, r skiday.Record) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := ensureSkier(ctx, tx, user); err != nil {
			return err
		}
		row := rowFor(user, r)
		if err := tx.GetContext(ctx, &row.Position,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM ski_days WHERE skier = ?`, user); err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertDay, row); err != nil {
			return err
		}
		return reorderDays(ctx, tx, user)
	})
	if err != nil {
		return fmt.Errorf("append ski day: %w", err)
	}
	s.notify(ctx)
	return nil
}

// Update replaces the ski day with r's id.
func (s *SQLiteStore) Update(ctx context.Context, user string, r skiday.Record) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			UPDATE ski_days SET day = :day, resort = :resort, conditions = :conditions,
				snowfall = :snowfall, temperature = :temperature, weather = :weather,
				runs = :runs, notes = :notes
			WHERE skier = :skier AND id = :id`, rowFor(user, r))
		if err != nil {
			return fmt.Errorf("update ski day: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return reorderDays(ctx, tx, user)
	})
	if err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Remove deletes a ski day.
func (s *SQLiteStore) Remove(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ski_days WHERE skier = ? AND id = ?`, user, id)
	if err != nil {
		return fmt.Errorf("remove ski day: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Replace overwrites every skier's days with state. The last writer wins.
func (s *SQLiteStore) Replace(ctx context.Context, state skiday.UserState) error {
	next := state.Clone()
	next.Backfill(s.roster)

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ski_days`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM skiers`); err != nil {
			return err
		}
		for pos, u := range next.Users {
			if _, err := tx.ExecContext(ctx, `INSERT INTO skiers (name, position) VALUES (?, ?)`, u, pos); err != nil {
				return err
			}
			days := next.Records(u)
			skiday.SortDays(days)
			for i, d := range days {
				row := rowFor(u, d)
				row.Position = i
				if _, err := tx.NamedExecContext(ctx, insertDay, row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	s.notify(ctx)
	return nil
}

// reorderDays stable-sorts a skier's days by date, newest first, starting
// from their stored positions, and writes the new positions back.
func reorderDays(ctx context.Context, tx *sqlx.Tx, user string) error {
	var rows []dayRow
	if err := tx.SelectContext(ctx, &rows,
		`SELECT * FROM ski_days WHERE skier = ? ORDER BY position, seq`, user); err != nil {
		return fmt.Errorf("load positions: %w", err)
	}
	// ISO dates order lexically.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Day > rows[j].Day })
	for i, row := range rows {
		if row.Position == i {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE ski_days SET position = ? WHERE seq = ?`, i, row.Seq); err != nil {
			return fmt.Errorf("write positions: %w", err)
		}
	}
	return nil
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (s *SQLiteStore) Subscribe(fn func(skiday.UserState)) func() {
	return s.hub.subscribe(fn)
}

func (s *SQLiteStore) notify(ctx context.Context) {
	state, err := s.Load(ctx)
	if err != nil {
		s.logger.Errorw("failed to reload state for subscribers", "error", err)
		return
	}
	s.hub.publish(state)
}

type goalRow struct {
	Skier   string `db:"skier"`
	ID      int64  `db:"id"`
	Type    string `db:"type"`
	Target  int    `db:"target"`
	Created string `db:"created"`
}

func (s *SQLiteStore) Goals(ctx context.Context, user string) ([]goals.Goal, error) {
	var rows []goalRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM goals WHERE skier = ? ORDER BY id`, user); err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	out := make([]goals.Goal, 0, len(rows))
	for _, r := range rows {
		created, err := time.Parse(time.RFC3339Nano, r.Created)
		if err != nil {
			return nil, fmt.Errorf("goal %d: %w", r.ID, err)
		}
		out = append(out, goals.Goal{ID: r.ID, Type: goals.Type(r.Type), Target: r.Target, Created: created})
	}
	return out, nil
}

func (s *SQLiteStore) AddGoal(ctx context.Context, user string, g goals.Goal) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO goals (skier, id, type, target, created)
		VALUES (:skier, :id, :type, :target, :created)`, goalRow{
		Skier:   user,
		ID:      g.ID,
		Type:    string(g.Type),
		Target:  g.Target,
		Created: g.Created.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("add goal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveGoal(ctx context.Context, user string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE skier = ? AND id = ?`, user, id)
	if err != nil {
		return fmt.Errorf("remove goal: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) EarnedBadges(ctx context.Context, user string) ([]string, error) {
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT badge FROM earned_badges WHERE skier = ? ORDER BY position`, user); err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) SaveEarnedBadges(ctx context.Context, user string, ids []string) error {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM earned_badges WHERE skier = ?`, user); err != nil {
			return err
		}
		for pos, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO earned_badges (skier, badge, position) VALUES (?, ?, ?)`, user, id, pos); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save badges: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (weather.Settings, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM settings WHERE key = ?`, settingsKey)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Settings{}, weather.ErrNoSettings
	}
	if err != nil {
		return weather.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	var out weather.Settings
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return weather.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, settings weather.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, settingsKey, string(raw))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SaveReport stores r as a msgpack blob and prunes all but the newest
// reports.
func (s *SQLiteStore) SaveReport(ctx context.Context, r weather.Report) error {
	payload, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO alert_reports (id, checked_at, payload) VALUES (?, ?, ?)`,
			r.ID, r.CheckedAt.UTC().Format(time.RFC3339Nano), payload); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM alert_reports WHERE rowid NOT IN (
				SELECT rowid FROM alert_reports ORDER BY checked_at DESC, rowid DESC LIMIT ?)`, keptReports)
		return err
	})
}

func (s *SQLiteStore) LastReport(ctx context.Context) (weather.Report, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM alert_reports ORDER BY checked_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Report{}, weather.ErrNoReport
	}
	if err != nil {
		return weather.Report{}, fmt.Errorf("load report: %w", err)
	}
	var r weather.Report
	if err := msgpack.Unmarshal(payload, &r); err != nil {
		return weather.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
