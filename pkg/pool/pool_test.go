package pool

import (
	"context"
	"testing"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

func TestEventPool_AcquireSubmitTakeRoundTrip(t *testing.T) {
	p := NewEventPool("orders", 4, NewBackpressureHandler(DefaultBackpressureConfig()))
	ce := event.NewCurrent(&event.Event{Timestamp: 1})

	pe := p.Acquire(ce)
	require.NoError(t, p.Submit(context.Background(), pe))
	require.Equal(t, 1, p.Len())

	taken, ok := p.TryTake()
	require.True(t, ok)
	require.Same(t, ce, taken.CE)

	taken.Release()
	require.Equal(t, 0, p.Len())
}

func TestEventPool_SubmitAppliesDropStrategyWhenFull(t *testing.T) {
	bp := NewBackpressureHandler(BackpressureConfig{Strategy: Drop})
	p := NewEventPool("orders", 1, bp)

	require.NoError(t, p.Submit(context.Background(), p.Acquire(nil)))
	err := p.Submit(context.Background(), p.Acquire(nil))
	require.ErrorIs(t, err, ErrDropped)
}

func TestEventPool_ReleaseIsIdempotent(t *testing.T) {
	p := NewEventPool("orders", 2, NewBackpressureHandler(DefaultBackpressureConfig()))
	pe := p.Acquire(nil)
	pe.Release()
	pe.Release() // must not panic or double-free
}
