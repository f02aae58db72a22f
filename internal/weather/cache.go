package weather

import (
	"sync"
	"time"
)

const (
	DefaultCacheTTL    = time.Hour
	DefaultDailyBudget = 900
)

type cachedForecast struct {
	periods   []ForecastPeriod
	fetchedAt time.Time
}

// ForecastCache keeps fetched forecasts per resort per calendar day for a
// bounded time.
type ForecastCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cachedForecast
}

// NewForecastCache creates a cache. A ttl <= 0 uses DefaultCacheTTL.
func NewForecastCache(ttl time.Duration) *ForecastCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ForecastCache{
		ttl:     ttl,
		entries: make(map[string]cachedForecast),
	}
}

func cacheKey(resort string, now time.Time) string {
	return resort + "_" + now.Format("2006-01-02")
}

// Get returns a forecast fetched today within the validity window.
func (c *ForecastCache) Get(resort string, now time.Time) ([]ForecastPeriod, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cacheKey(resort, now)]
	if !ok || now.Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.periods, true
}

// Put stores a freshly fetched forecast.
func (c *ForecastCache) Put(resort string, periods []ForecastPeriod, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(resort, now)] = cachedForecast{periods: periods, fetchedAt: now}
}

// Purge drops expired entries and returns how many were removed.
func (c *ForecastCache) Purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// CallBudget limits outbound forecast calls per calendar day.
type CallBudget struct {
	mu    sync.Mutex
	limit int
	day   string
	used  int
}

// NewCallBudget creates a budget. A limit <= 0 uses DefaultDailyBudget.
func NewCallBudget(limit int) *CallBudget {
	if limit <= 0 {
		limit = DefaultDailyBudget
	}
	return &CallBudget{limit: limit}
}

func (b *CallBudget) roll(now time.Time) {
	if day := now.Format("2006-01-02"); day != b.day {
		b.day = day
		b.used = 0
	}
}

// Take spends one call if any remain today.
func (b *CallBudget) Take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll(now)
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Remaining is the number of calls left today.
func (b *CallBudget) Remaining(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll(now)
	return b.limit - b.used
}
