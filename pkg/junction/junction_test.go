package junction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/pool"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu   sync.Mutex
	seen []int64
}

func (r *recordingSubscriber) Process(ce *event.ComplexEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ce.Timestamp)
}

func (r *recordingSubscriber) Timestamps() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.seen))
	copy(out, r.seen)
	return out
}

type panickingSubscriber struct{}

func (panickingSubscriber) Process(ce *event.ComplexEvent) { panic("boom") }

func TestJunction_SyncDeliversInPublishOrderToAllSubscribers(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync})
	a, b := &recordingSubscriber{}, &recordingSubscriber{}
	j.Subscribe(a)
	j.Subscribe(b)
	j.Start()
	defer j.Stop()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, j.Publish(context.Background(), &event.ComplexEvent{Timestamp: i}))
	}

	require.Equal(t, []int64{1, 2, 3}, a.Timestamps())
	require.Equal(t, []int64{1, 2, 3}, b.Timestamps())
}

func TestJunction_SyncLastSubscriberGetsOriginalNotClone(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync})
	var captured *event.ComplexEvent
	capture := subscriberFunc(func(ce *event.ComplexEvent) { captured = ce })
	j.Subscribe(capture)
	j.Start()
	defer j.Stop()

	original := &event.ComplexEvent{Timestamp: 42}
	require.NoError(t, j.Publish(context.Background(), original))
	require.Same(t, original, captured)
}

func TestJunction_PanicInSubscriberDoesNotBlockRemaining(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync, OnError: Drop})
	j.Subscribe(panickingSubscriber{})
	after := &recordingSubscriber{}
	j.Subscribe(after)
	j.Start()
	defer j.Stop()

	require.NoError(t, j.Publish(context.Background(), &event.ComplexEvent{Timestamp: 1}))
	require.Equal(t, []int64{1}, after.Timestamps())
}

func TestJunction_AsyncDeliversAllEventsToSingleConsumer(t *testing.T) {
	j := New(Config{
		ID:        "orders",
		Mode:      Async,
		Capacity:  64,
		Consumers: 1,
		Backpressure: pool.BackpressureConfig{Strategy: pool.Block},
	})
	sub := &recordingSubscriber{}
	j.Subscribe(sub)
	j.Start()

	for i := int64(1); i <= 10; i++ {
		require.NoError(t, j.Publish(context.Background(), &event.ComplexEvent{Timestamp: i}))
	}

	require.Eventually(t, func() bool {
		return len(sub.Timestamps()) == 10
	}, time.Second, time.Millisecond)
	j.Stop()

	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, sub.Timestamps())
}

func TestJunction_AsyncDropsUnderBackpressureWithNoConsumerDraining(t *testing.T) {
	j := New(Config{
		ID:           "orders",
		Mode:         Async,
		Capacity:     64,
		Consumers:    1,
		Backpressure: pool.BackpressureConfig{Strategy: pool.Drop},
	})
	// Publish before Start: no consumer goroutine is draining yet, so the
	// ring fills to its (power-of-two-rounded) capacity and every
	// subsequent publish is dropped.
	dropped := 0
	for i := 0; i < 1000; i++ {
		if err := j.Publish(context.Background(), &event.ComplexEvent{Timestamp: int64(i)}); err != nil {
			dropped++
		}
	}
	require.Equal(t, 1000-64, dropped)

	sub := &recordingSubscriber{}
	j.Subscribe(sub)
	j.Start()
	require.Eventually(t, func() bool {
		return len(sub.Timestamps()) == 64
	}, time.Second, time.Millisecond)
	j.Stop()

	require.Equal(t, dropped+len(sub.Timestamps()), 1000)
}

func TestJunction_SubscribeRejectsDuplicateIdentity(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync})
	sub := &recordingSubscriber{}
	j.Subscribe(sub)
	j.Subscribe(sub)
	require.Equal(t, 1, j.SubscriberCount())
}

func TestJunction_UnsubscribeRemoves(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync})
	sub := &recordingSubscriber{}
	j.Subscribe(sub)
	j.Unsubscribe(sub)
	require.Equal(t, 0, j.SubscriberCount())
}

func TestJunction_SetFaultJunctionRejectsSelf(t *testing.T) {
	j := New(Config{ID: "orders", Mode: Sync})
	require.Panics(t, func() { j.SetFaultJunction(j) })
}

func TestJunction_StreamOnErrorRoutesToFaultJunction(t *testing.T) {
	fault := New(Config{ID: "faults", Mode: Sync})
	faultSub := &recordingSubscriber{}
	fault.Subscribe(faultSub)
	fault.Start()
	defer fault.Stop()

	j := New(Config{ID: "orders", Mode: Sync, OnError: Stream})
	j.SetFaultJunction(fault)
	j.Subscribe(panickingSubscriber{})
	j.Start()
	defer j.Stop()

	require.NoError(t, j.Publish(context.Background(), &event.ComplexEvent{Timestamp: 7}))
	require.Eventually(t, func() bool {
		return len(faultSub.Timestamps()) == 1
	}, time.Second, time.Millisecond)
}

type subscriberFunc func(ce *event.ComplexEvent)

func (f subscriberFunc) Process(ce *event.ComplexEvent) { f(ce) }
