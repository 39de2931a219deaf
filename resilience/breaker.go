package resilience

import (
	"sync"
	"time"

	"github.com/agentcore/reactor/agenterr"
)

// breakerState names a circuit breaker state.
type breakerState string

const (
	breakerClosed   breakerState = "closed"
	breakerOpen     breakerState = "open"
	breakerHalfOpen breakerState = "half_open"
)

// CircuitBreaker trips to open after a run of consecutive failures for a
// given key (model id or tool name), failing fast during the cool-down
// period and admitting a single probe once it elapses.
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	coolDown         time.Duration
	states           map[string]*breakerEntry
}

type breakerEntry struct {
	state       breakerState
	failures    int
	openedAt    time.Time
	probing     bool
}

// NewCircuitBreaker constructs a CircuitBreaker that trips after
// failureThreshold consecutive failures and stays open for coolDown.
func NewCircuitBreaker(failureThreshold int, coolDown time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if coolDown <= 0 {
		coolDown = 30 * time.Second
	}
	return &CircuitBreaker{failureThreshold: failureThreshold, coolDown: coolDown, states: make(map[string]*breakerEntry)}
}

// Allow reports whether a call keyed by key may proceed. When the breaker is
// open and the cool-down has not elapsed, it returns an agenterr error of
// KindService. When the cool-down has elapsed, it admits exactly one
// half-open probe.
func (b *CircuitBreaker) Allow(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(key)
	switch e.state {
	case breakerOpen:
		if time.Since(e.openedAt) < b.coolDown {
			return agenterr.Newf(agenterr.KindService, "circuit breaker open for %q", key)
		}
		if e.probing {
			return agenterr.Newf(agenterr.KindService, "circuit breaker half-open probe in flight for %q", key)
		}
		e.state = breakerHalfOpen
		e.probing = true
		return nil
	case breakerHalfOpen:
		if e.probing {
			return agenterr.Newf(agenterr.KindService, "circuit breaker half-open probe in flight for %q", key)
		}
		e.probing = true
		return nil
	default:
		return nil
	}
}

// RecordSuccess closes the breaker for key.
func (b *CircuitBreaker) RecordSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(key)
	e.state = breakerClosed
	e.failures = 0
	e.probing = false
}

// RecordFailure records one failure for key, tripping the breaker open once
// failureThreshold consecutive failures accumulate.
func (b *CircuitBreaker) RecordFailure(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := b.entry(key)
	if e.state == breakerHalfOpen {
		e.state = breakerOpen
		e.openedAt = time.Now()
		e.probing = false
		return
	}
	e.failures++
	if e.failures >= b.failureThreshold {
		e.state = breakerOpen
		e.openedAt = time.Now()
	}
}

func (b *CircuitBreaker) entry(key string) *breakerEntry {
	e, ok := b.states[key]
	if !ok {
		e = &breakerEntry{state: breakerClosed}
		b.states[key] = e
	}
	return e
}
