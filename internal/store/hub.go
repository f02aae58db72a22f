package store

import (
	"errors"
	"sync"

	"github.com/i474232898/ski-day-tracker/internal/skiday"
)

// ErrNotFound is returned when a skier, ski day or goal does not exist.
var ErrNotFound = errors.New("not found")

// hub fans state snapshots out to subscribers.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(skiday.UserState)
}

func (h *hub) subscribe(fn func(skiday.UserState)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(skiday.UserState))
	}
	id := h.next
	h.next++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// publish hands every subscriber its own copy of state.
func (h *hub) publish(state skiday.UserState) {
	h.mu.Lock()
	fns := make([]func(skiday.UserState), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}
