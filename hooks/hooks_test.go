package hooks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInEmissionOrderPerCorrelationID(t *testing.T) {
	bus := hooks.NewBus()

	var mu sync.Mutex
	var seen []int

	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		se, ok := evt.(*hooks.StepCompletedEvent)
		require.True(t, ok)
		mu.Lock()
		seen = append(seen, se.StepNumber)
		mu.Unlock()
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		bus.Publish(ctx, hooks.NewStepCompletedEvent("evt", "run-1", i, step.OutcomeSuccess, nil))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestSubscriberErrorsAreSwallowed(t *testing.T) {
	bus := hooks.NewBus()
	called := make(chan struct{}, 1)

	sub, err := bus.Register(hooks.SubscriberFunc(func(context.Context, hooks.Event) error {
		called <- struct{}{}
		return errors.New("boom")
	}))
	require.NoError(t, err)
	defer sub.Close()

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), hooks.NewTaskCompletedEvent("e", "run-1", step.OutcomeSuccess, nil, 1))
	})

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("subscriber was never invoked")
	}
}

func TestRegisterForFiltersByEventType(t *testing.T) {
	bus := hooks.NewBus()

	var mu sync.Mutex
	var seen []hooks.EventType
	sub, err := bus.RegisterFor(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		seen = append(seen, evt.Type())
		mu.Unlock()
		return nil
	}), hooks.EventTaskCompleted)
	require.NoError(t, err)
	defer sub.Close()

	ctx := context.Background()
	bus.Publish(ctx, hooks.NewStepCompletedEvent("e1", "run-1", 1, step.OutcomeSuccess, nil))
	bus.Publish(ctx, hooks.NewTaskCompletedEvent("e2", "run-1", step.OutcomeSuccess, nil, 1))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []hooks.EventType{hooks.EventTaskCompleted}, seen)
}

func TestRegisterForRejectsUnknownEventType(t *testing.T) {
	bus := hooks.NewBus()
	_, err := bus.RegisterFor(hooks.SubscriberFunc(func(context.Context, hooks.Event) error { return nil }), "no_such_event")
	assert.Error(t, err)
}

func TestParseEventTypeStableAliases(t *testing.T) {
	et, ok := hooks.ParseEventType("tool_call_requested")
	require.True(t, ok)
	assert.Equal(t, hooks.EventToolCallRequested, et)

	_, ok = hooks.ParseEventType("bogus")
	assert.False(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	bus := hooks.NewBus()
	sub, err := bus.Register(hooks.SubscriberFunc(func(context.Context, hooks.Event) error { return nil }))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		sub.Close()
		sub.Close()
	})
}
