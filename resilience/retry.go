package resilience

import (
	"context"
	"time"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// RetryPolicy configures the exponential-backoff retry loop.
type RetryPolicy struct {
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
}

// DefaultRetryPolicy mirrors the core's suggested defaults: a handful of
// attempts with a short base interval.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseInterval: 200 * time.Millisecond, MaxInterval: 10 * time.Second}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseInterval
	eb.MaxInterval = p.MaxInterval
	eb.MaxElapsedTime = 0
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// withRetry invokes call under policy, retrying classified-transient errors
// with exponential backoff and jitter, emitting RetryRequested on every
// retry and RecoveryCompleted once a retried call eventually succeeds.
// modelID correlates the emitted events.
func withRetry(ctx context.Context, bus *hooks.Bus, modelID string, policy RetryPolicy, call func(context.Context) error) error {
	attempt := 0
	failedBefore := false

	operation := func() error {
		attempt++
		err := call(ctx)
		if err == nil {
			if failedBefore {
				bus.Publish(ctx, hooks.NewRecoveryCompletedEvent(uuid.NewString(), modelID, attempt-1))
			}
			return nil
		}
		class := Classify(err)
		if !class.Retryable() {
			return backoff.Permanent(err)
		}
		failedBefore = true
		bus.Publish(ctx, hooks.NewRetryRequestedEvent(uuid.NewString(), modelID, attempt, policy.MaxAttempts, policy.BaseInterval.Seconds()))
		return err
	}

	err := backoff.Retry(operation, policy.backOff(ctx))
	if err == nil {
		return nil
	}
	if !Classify(err).Retryable() {
		// Permanent failures (authentication, client errors) surface as-is
		// so callers can branch on their original kind; only exhausted
		// transient errors pick up the service wrapper.
		return err
	}
	return agenterr.Wrap(agenterr.KindService, "resilience: retries exhausted", err)
}
