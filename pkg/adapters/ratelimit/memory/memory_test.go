package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, win time.Duration) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := newLimiter(limit, win, clock.Now)
	t.Cleanup(func() { l.Close() })
	return l, clock
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "hit %d", i)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 3-i, d.Remaining)
		assert.Equal(t, time.Minute, d.ResetAfter)
	}

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	d, _ := l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)

	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Second)
	ctx := context.Background()

	l.Allow(ctx, "k")
	clock.Advance(400 * time.Millisecond)
	d, _ := l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 600*time.Millisecond, d.ResetAfter)

	d, _ = l.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	clock.Advance(600 * time.Millisecond)
	d, _ = l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, time.Second, d.ResetAfter)
}

func TestLimiter_SweepDropsExpiredWindows(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Second)
	ctx := context.Background()

	l.Allow(ctx, "old")
	clock.Advance(700 * time.Millisecond)
	l.Allow(ctx, "new")
	clock.Advance(300 * time.Millisecond)

	l.sweep()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_ConcurrentHits(t *testing.T) {
	l, _ := newTestLimiter(t, 50, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Allow(ctx, "shared")
			if err == nil && d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestLimiter_CloseIsIdempotent(t *testing.T) {
	l := NewLimiter(1, time.Second)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
