// Package ratelimit implements a process-local, fixed-window submission
// limiter keyed by client address.
//
// This is the one piece of shared mutable state in the service: every
// request that reaches the contact endpoint performs a read-modify-write on
// its key's window. All mutations happen under a single mutex so that two
// concurrent requests can never both grab the last slot of a window.
//
// The limiter is intentionally process-local. The service runs as a single
// instance behind a reverse proxy; a distributed limiter (e.g. Redis-backed)
// would buy nothing here and cost an availability dependency.
package ratelimit

import (
	"sync"
	"time"
)

// window tracks submissions for one key inside the current window.
type window struct {
	start time.Time
	count int
}

// Limiter enforces at most Max submissions per Window for each key.
//
// Windows are created lazily on first sight of a key and swept periodically
// once expired, so long-running processes do not accumulate unbounded
// per-address state. The zero value is not usable; construct with New.
type Limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*window

	stop     chan struct{}
	stopOnce sync.Once

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// New constructs a Limiter allowing max submissions per windowLen and starts
// the background sweeper that reclaims expired windows.
//
// max values < 1 are coerced to 1. Call Close when the limiter is no longer
// needed to stop the sweeper.
func New(max int, windowLen time.Duration) *Limiter {
	if max < 1 {
		max = 1
	}
	if windowLen <= 0 {
		windowLen = time.Minute
	}
	l := &Limiter{
		max:     max,
		window:  windowLen,
		entries: make(map[string]*window),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Allow records one submission attempt for key and reports whether it is
// within the limit.
//
// Semantics:
//   - No window, or the window has expired: a fresh window starts with
//     count 1 and the call is allowed.
//   - Live window: the count is incremented first and the call is allowed
//     only if the new count is still within the limit. The increment is
//     never rolled back, so a blocked key stays blocked for the remainder
//     of its window instead of leaking an allowance every few attempts.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.entries[key] = &window{start: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.max
}

// Close stops the background sweeper. Safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// sweep periodically drops windows that have fully elapsed. Expiry is also
// checked inline by Allow, so the sweeper exists purely to bound memory for
// keys that never return.
func (l *Limiter) sweep() {
	t := time.NewTicker(l.window)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			now := l.now()
			l.mu.Lock()
			for k, w := range l.entries {
				if now.Sub(w.start) >= l.window {
					delete(l.entries, k)
				}
			}
			l.mu.Unlock()
		}
	}
}
