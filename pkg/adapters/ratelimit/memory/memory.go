package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aescanero/basecamp/pkg/adapters/ratelimit"
)

// window tracks the hits of one key in the current window.
type window struct {
	start time.Time
	count int
}

// Limiter implements ratelimit.Limiter with in-process counters.
// A background goroutine drops expired windows until Close is called.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	done      chan struct{}
	closeOnce sync.Once
}

// NewLimiter creates a limiter allowing limit hits per key per window.
func NewLimiter(limit int, win time.Duration) *Limiter {
	return newLimiter(limit, win, time.Now)
}

func newLimiter(limit int, win time.Duration, now func() time.Time) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  win,
		now:     now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow records a hit for key (ratelimit.Limiter interface)
func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	return ratelimit.NewDecision(l.limit, w.count, w.start.Add(l.window).Sub(now)), nil
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep removes windows that have ended.
func (l *Limiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
