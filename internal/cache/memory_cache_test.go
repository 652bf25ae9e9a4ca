package cache

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

func newTestCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryCache().WithClock(clock.Now), clock
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	require.NoError(t, c.Set(ctx, "token", map[string]string{"jti": "abc"}, time.Minute))

	var got map[string]string
	require.NoError(t, c.Get(ctx, "token", &got))
	assert.Equal(t, "abc", got["jti"])

	ttl, err := c.TTL(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "token", &got), ErrCacheMiss)

	exists, err := c.Exists(ctx, "token")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_IncrementFixedWindow(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache()

	n, remaining, err := c.Increment(ctx, "attempts", 300*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 300*time.Second, remaining)

	clock.Advance(100 * time.Second)
	n, remaining, err = c.Increment(ctx, "attempts", 300*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	// window is not extended by later increments
	assert.Equal(t, 200*time.Second, remaining)

	clock.Advance(200 * time.Second)
	n, _, err = c.Increment(ctx, "attempts", 300*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryCache_IncrementConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Increment(ctx, "attempts", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, c.Get(ctx, "attempts", &count))
	assert.Equal(t, int64(50), count)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	for _, k := range []string{"login_attempts:a", "login_blocked:a", "revoked:1"} {
		require.NoError(t, c.Set(ctx, k, 1, 0))
	}

	require.NoError(t, c.Delete(ctx, "login_attempts:a", "login_blocked:a", "missing"))
	exists, _ := c.Exists(ctx, "login_attempts:a")
	assert.False(t, exists)
	exists, _ = c.Exists(ctx, "login_blocked:a")
	assert.False(t, exists)
	exists, _ = c.Exists(ctx, "revoked:1")
	assert.True(t, exists)
}

func TestMemoryCache_IncrementRejectsNonInteger(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", "text", time.Minute))

	_, _, err := c.Increment(ctx, "k", time.Minute)
	assert.Error(t, err)
}
