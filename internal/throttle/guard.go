package throttle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/cache"
	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
	"github.com/SAP-F-2025/learning-service/internal/metrics"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

const (
	DefaultAttemptLimit = 3
	DefaultWindow       = 300 * time.Second
)

type Config struct {
	AttemptLimit int
	Window       time.Duration
}

// Guard counts failed logins per identity and locks the identity out once the
// limit is reached, until the window that started with the first failure ends.
// The counters live in an expiring cache, so the guard is advisory: when the
// cache is unreachable it lets the request through and logs.
type Guard struct {
	store  cache.CacheService
	config Config
	logger utils.Logger
}

func NewGuard(store cache.CacheService, config Config, logger utils.Logger) *Guard {
	if config.AttemptLimit <= 0 {
		config.AttemptLimit = DefaultAttemptLimit
	}
	if config.Window <= 0 {
		config.Window = DefaultWindow
	}
	return &Guard{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Normalize is the identity key used for all throttle state.
func Normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

func attemptsKey(identity string) string {
	return "login_attempts:" + identity
}

func blockedKey(identity string) string {
	return "login_blocked:" + identity
}

// Check returns a *RateLimitedError while identity is blocked. Callers must
// not look at credentials when it fails.
func (g *Guard) Check(ctx context.Context, identity string) error {
	id := Normalize(identity)

	ttl, err := g.store.TTL(ctx, blockedKey(id))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		g.logger.WarnContext(ctx, "Login throttle check unavailable", "identity", id, "error", err)
		return nil
	}

	metrics.RecordThrottle("rejected")
	return apperrors.NewRateLimitedError(id, ttl)
}

// RecordFailure counts one failed attempt. When this failure blocks the
// identity it returns how long the block lasts, otherwise zero.
func (g *Guard) RecordFailure(ctx context.Context, identity string) (time.Duration, error) {
	id := Normalize(identity)
	metrics.RecordThrottle("failure")

	count, remaining, err := g.store.Increment(ctx, attemptsKey(id), g.config.Window)
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	if count < int64(g.config.AttemptLimit) {
		return 0, nil
	}
	if remaining <= 0 {
		remaining = g.config.Window
	}

	// Block only for what is left of the current window.
	if err := g.store.Set(ctx, blockedKey(id), true, remaining); err != nil {
		return 0, fmt.Errorf("block identity: %w", err)
	}

	metrics.RecordThrottle("blocked")
	g.logger.WarnContext(ctx, "Identity blocked after repeated login failures",
		"identity", id,
		"attempts", count,
		"retry_after", remaining.String())
	return remaining, nil
}

// Reset clears the counter and any block, after a successful login.
func (g *Guard) Reset(ctx context.Context, identity string) error {
	id := Normalize(identity)
	metrics.RecordThrottle("reset")
	return g.store.Delete(ctx, attemptsKey(id), blockedKey(id))
}

// Attempts reports the current failure count for identity, zero when none.
func (g *Guard) Attempts(ctx context.Context, identity string) (int64, error) {
	var count int64
	err := g.store.Get(ctx, attemptsKey(Normalize(identity)), &count)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	return count, err
}
