// Package ratelimit implements per-identity sliding-window admission
// control. Windows are pruned lazily on each admission check; state is
// purely in memory and does not survive restarts.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits up to quota requests per identity within a trailing
// window. Each identity's window has its own lock, so admission checks
// for different identities do not serialize behind each other.
type Limiter struct {
	window time.Duration
	quota  int
	now    func() time.Time

	mu      sync.RWMutex
	windows map[string]*identityWindow
}

type identityWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter with the given trailing window and quota.
func New(window time.Duration, quota int, opts ...Option) *Limiter {
	l := &Limiter{
		window:  window,
		quota:   quota,
		now:     time.Now,
		windows: make(map[string]*identityWindow),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit prunes timestamps older than the window for the identity, then
// either records the current instant and accepts, or rejects without
// recording when the quota is already spent.
func (l *Limiter) Admit(identity string) bool {
	w := l.windowFor(identity)
	now := l.now()
	cutoff := now.Add(-l.window)

	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.quota {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

func (l *Limiter) windowFor(identity string) *identityWindow {
	l.mu.RLock()
	w, ok := l.windows[identity]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok = l.windows[identity]; ok {
		return w
	}
	w = &identityWindow{}
	l.windows[identity] = w
	return w
}

// Pending returns the number of live timestamps for an identity without
// recording anything. Intended for stats endpoints and tests.
func (l *Limiter) Pending(identity string) int {
	l.mu.RLock()
	w, ok := l.windows[identity]
	l.mu.RUnlock()
	if !ok {
		return 0
	}

	cutoff := l.now().Add(-l.window)
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, t := range w.stamps {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
