package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/agentcore/reactor/hooks"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimitError is the classified rate_limit condition, carrying the
// provider's retry_after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string { return "resilience: rate limited" }

func (e *RateLimitError) retryAfterSeconds() float64 { return e.RetryAfter.Seconds() }

// rateLimitAware is implemented by errors that can report a provider's
// retry_after hint (in seconds).
type rateLimitAware interface {
	retryAfterSeconds() float64
}

func (e *HTTPStatusError) retryAfterSeconds() float64 { return e.RetryAfter }

// waitOnRateLimit suspends the caller for at least retry_after, emitting
// RateLimitHit first. It never blocks unrelated callers: the sleep is scoped
// to this goroutine only.
func waitOnRateLimit(ctx context.Context, bus *hooks.Bus, toolName string, err error) error {
	retryAfter := 0.0
	var ra rateLimitAware
	if errors.As(err, &ra) {
		retryAfter = ra.retryAfterSeconds()
	}
	bus.Publish(ctx, hooks.NewRateLimitHitEvent(uuid.NewString(), toolName, toolName, retryAfter, nil))
	if retryAfter <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(retryAfter * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Limiter wraps a token-bucket limiter bounding call concurrency/throughput
// per model or tool id. One Limiter instance is process-local; independent
// call sites should each get their own instance so a slow caller never
// blocks unrelated work.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter constructs a Limiter admitting up to ratePerSecond calls per
// second with the given burst.
func NewLimiter(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until the limiter admits one call or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.rl == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
