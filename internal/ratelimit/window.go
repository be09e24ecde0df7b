// Package ratelimit implements the sliding-window limiter that guards calls
// to the upstream translation service.
package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// Defaults match the upstream budget of ten requests per minute.
const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

// ErrLimitExceeded is returned when the window already holds the maximum
// number of requests.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Window is a sliding-window rate limiter. It keeps a count of requests per
// millisecond timestamp for the trailing window and is safe for concurrent use.
// One Window is shared by every pipeline run in the process.
type Window struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	now         func() time.Time
	counts      map[int64]int
}

// Option configures a Window.
type Option func(*Window)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		w.now = now
	}
}

// New creates a Window allowing maxRequests within any trailing window.
// Non-positive arguments fall back to the defaults.
func New(maxRequests int, window time.Duration, opts ...Option) *Window {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	w := &Window{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		counts:      make(map[int64]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CheckAndConsume records one request if the window has room for it and
// returns ErrLimitExceeded otherwise. A rejected call does not change state.
func (w *Window) CheckAndConsume() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UnixMilli()
	current := w.purge(now)
	if current >= w.maxRequests {
		return ErrLimitExceeded
	}

	w.counts[now]++
	return nil
}

// Count returns the number of requests in the current window.
func (w *Window) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.purge(w.now().UnixMilli())
}

// Limit returns the configured maximum and window length.
func (w *Window) Limit() (int, time.Duration) {
	return w.maxRequests, w.window
}

// purge drops entries older than the window and returns the remaining total.
// Callers must hold w.mu.
func (w *Window) purge(now int64) int {
	windowStart := now - w.window.Milliseconds()

	total := 0
	for ts, n := range w.counts {
		if ts < windowStart {
			delete(w.counts, ts)
			continue
		}
		total += n
	}
	return total
}
