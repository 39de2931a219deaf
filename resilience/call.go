package resilience

import (
	"context"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
	"github.com/google/uuid"
)

// Resilient wraps a model or tool call with retry, rate-limit handling, a
// circuit breaker, and failover across an ordered list of alternative
// models, per the core's resilience contract.
type Resilient struct {
	Policy  RetryPolicy
	Breaker *CircuitBreaker
	Bus     *hooks.Bus
}

// NewResilient constructs a Resilient with the default retry policy and a
// fresh circuit breaker.
func NewResilient(bus *hooks.Bus) *Resilient {
	return &Resilient{Policy: DefaultRetryPolicy(), Breaker: NewCircuitBreaker(0, 0), Bus: bus}
}

// Call invokes fn(ctx, modelID) for primaryID, retrying transient errors,
// honoring rate-limit backpressure, and failing over to each of
// alternativeIDs in order once primaryID's retries are exhausted on a
// non-authentication error. Authentication errors are never retried or
// failed over past.
func (r *Resilient) Call(ctx context.Context, primaryID string, alternativeIDs []string, fn func(ctx context.Context, modelID string) error) error {
	ids := append([]string{primaryID}, alternativeIDs...)
	var lastErr error
	for i, id := range ids {
		if err := r.Breaker.Allow(id); err != nil {
			lastErr = err
			continue
		}
		err := r.callOne(ctx, id, fn)
		if err == nil {
			r.Breaker.RecordSuccess(id)
			return nil
		}
		lastErr = err
		r.Breaker.RecordFailure(id)
		if Classify(err) == ClassAuthentication {
			return err
		}
		if i+1 < len(ids) {
			r.Bus.Publish(ctx, hooks.NewFailoverOccurredEvent(uuid.NewString(), id, ids[i+1], i+1))
		}
	}
	return lastErr
}

func (r *Resilient) callOne(ctx context.Context, modelID string, fn func(ctx context.Context, modelID string) error) error {
	return withRetry(ctx, r.Bus, modelID, r.Policy, func(ctx context.Context) error {
		err := fn(ctx, modelID)
		if err == nil {
			return nil
		}
		if Classify(err) == ClassRateLimit {
			if waitErr := waitOnRateLimit(ctx, r.Bus, modelID, err); waitErr != nil {
				return waitErr
			}
			return err
		}
		if Classify(err) == ClassAuthentication {
			return agenterr.Wrap(agenterr.KindAuthentication, "resilience: authentication error, not retried", err)
		}
		return err
	})
}
