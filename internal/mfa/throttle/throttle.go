// Package throttle limits how often one-time codes are sent per user and
// factor. Both limiters count sends over a trailing window, so no span of
// window length ever holds more than limit sends. The memory limiter is per
// process; use the redis limiter when several replicas share the budget.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrLimited = errors.New("throttle: limit exceeded")

type Limiter interface {
	// Allow records one send for key, returning ErrLimited when limit sends
	// already happened within the trailing window.
	Allow(ctx context.Context, key string) error
}

// MemoryLimiter keeps the send times of each key and prunes those older
// than the window.
type MemoryLimiter struct {
	mu     sync.Mutex
	sends  map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &MemoryLimiter{
		sends:  make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	recent := prune(m.sends[key], now.Add(-m.window))
	if len(recent) >= m.limit {
		m.sends[key] = recent
		return ErrLimited
	}
	m.sends[key] = append(recent, now)
	return nil
}

// Sweep drops keys with no send inside the window.
func (m *MemoryLimiter) Sweep() int {
	cutoff := m.now().Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, times := range m.sends {
		recent := prune(times, cutoff)
		if len(recent) == 0 {
			delete(m.sends, k)
			n++
			continue
		}
		m.sends[k] = recent
	}
	return n
}

// prune drops times at or before cutoff. times is sorted ascending.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}
