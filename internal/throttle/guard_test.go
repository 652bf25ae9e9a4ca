package throttle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newGuard() (*Guard, *clock) {
	clk := &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryCache().WithClock(clk.Now)
	return NewGuard(store, Config{AttemptLimit: 3, Window: 300 * time.Second}, utils.NewNopLogger()), clk
}

func TestGuard_BlocksAfterThreeFailures(t *testing.T) {
	ctx := context.Background()
	g, clk := newGuard()

	for i := 1; i <= 2; i++ {
		require.NoError(t, g.Check(ctx, "Ada@Example.com"))
		blockedFor, err := g.RecordFailure(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Zero(t, blockedFor, "failure %d", i)
	}

	clk.Advance(60 * time.Second)
	blockedFor, err := g.RecordFailure(ctx, " ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, 240*time.Second, blockedFor)

	err = g.Check(ctx, "ada@example.com")
	var rl *apperrors.RateLimitedError
	require.ErrorAs(t, err, &rl)
	// block lasts for the rest of the window that began at the first failure
	assert.Equal(t, 240*time.Second, rl.RetryAfter)

	clk.Advance(240 * time.Second)
	assert.NoError(t, g.Check(ctx, "ada@example.com"))

	attempts, err := g.Attempts(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), attempts)
}

func TestGuard_SuccessResetsCounter(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuard()

	_, err := g.RecordFailure(ctx, "bob@example.com")
	require.NoError(t, err)
	_, err = g.RecordFailure(ctx, "bob@example.com")
	require.NoError(t, err)

	require.NoError(t, g.Reset(ctx, "bob@example.com"))
	attempts, err := g.Attempts(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), attempts)

	blockedFor, err := g.RecordFailure(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Zero(t, blockedFor)
}

func TestGuard_IdentitiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuard()

	for i := 0; i < 3; i++ {
		_, err := g.RecordFailure(ctx, "eve@example.com")
		require.NoError(t, err)
	}

	assert.Error(t, g.Check(ctx, "eve@example.com"))
	assert.NoError(t, g.Check(ctx, "carol@example.com"))
}

func TestGuard_ConcurrentFailuresAreNotUndercounted(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuard()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.RecordFailure(ctx, "mallory@example.com")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	attempts, err := g.Attempts(ctx, "mallory@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(20), attempts)
	assert.Error(t, g.Check(ctx, "mallory@example.com"))
}

// throttleEvents reads the login throttle counter for event from the default registry.
func throttleEvents(t *testing.T, event string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "learning_login_throttle_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "event" && label.GetValue() == event {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestGuard_BlockingFailureIsNotCountedAsRejection(t *testing.T) {
	ctx := context.Background()
	g, _ := newGuard()

	rejected := throttleEvents(t, "rejected")
	blocked := throttleEvents(t, "blocked")

	var blockedFor time.Duration
	for i := 0; i < 3; i++ {
		var err error
		blockedFor, err = g.RecordFailure(ctx, "oscar@example.com")
		require.NoError(t, err)
	}
	assert.Equal(t, 300*time.Second, blockedFor)
	assert.Equal(t, rejected, throttleEvents(t, "rejected"))
	assert.Equal(t, blocked+1, throttleEvents(t, "blocked"))

	require.Error(t, g.Check(ctx, "oscar@example.com"))
	assert.Equal(t, rejected+1, throttleEvents(t, "rejected"))
}

type brokenStore struct {
	mock.Mock
	cache.CacheService
}

func (b *brokenStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := b.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func TestGuard_FailsOpenWhenStoreUnavailable(t *testing.T) {
	store := &brokenStore{}
	store.On("TTL", mock.Anything, "login_blocked:ada@example.com").Return(time.Duration(0), errors.New("connection refused"))

	g := NewGuard(store, Config{}, utils.NewNopLogger())
	assert.NoError(t, g.Check(context.Background(), "ada@example.com"))
	assert.Equal(t, DefaultAttemptLimit, g.config.AttemptLimit)
	store.AssertExpectations(t)
}
