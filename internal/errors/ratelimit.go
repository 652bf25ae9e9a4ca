package errors

import (
	"fmt"
	"math"
	"time"
)

// RateLimitedError is returned while an identity is locked out.
type RateLimitedError struct {
	Identity   string        `json:"-"`
	RetryAfter time.Duration `json:"retry_after"`
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

// RetryAfterSeconds rounds up so clients never retry early.
func (e *RateLimitedError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

func NewRateLimitedError(identity string, retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{
		Identity:   identity,
		RetryAfter: retryAfter,
	}
}
