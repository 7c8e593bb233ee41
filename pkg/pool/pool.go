package pool

import (
	"context"
	"sync"

	"github.com/corestream/corestream/pkg/event"
)

// PooledEvent wraps a reusable *event.ComplexEvent so a subscriber can
// return it once processing completes instead of leaving it for the GC.
type PooledEvent struct {
	CE   *event.ComplexEvent
	pool *EventPool
}

// Release returns the holder to its owning pool. Safe to call at most
// once; calling it twice or on a zero-value PooledEvent is a no-op.
func (p *PooledEvent) Release() {
	if p == nil || p.pool == nil {
		return
	}
	pl := p.pool
	p.pool = nil
	p.CE = nil
	pl.free.Put(p)
}

// EventPool stages PooledEvent holders onto a bounded ring. Holders come
// from a sync.Pool free list, so their number is not bounded by the
// ring's capacity and Acquire always returns a holder; only Submit can
// fail, through the configured back-pressure strategy.
type EventPool struct {
	name string
	ring *Ring
	bp   *BackpressureHandler
	free sync.Pool
}

// NewEventPool builds a pool named for its junction/stream, with a ring of
// the given capacity and the supplied back-pressure handler.
func NewEventPool(name string, capacity int, bp *BackpressureHandler) *EventPool {
	return &EventPool{
		name: name,
		ring: NewRing(capacity),
		bp:   bp,
		free: sync.Pool{New: func() any { return &PooledEvent{} }},
	}
}

// Acquire obtains a holder from the free list (or allocates one) to stage
// ce before Submit.
func (p *EventPool) Acquire(ce *event.ComplexEvent) *PooledEvent {
	pe := p.free.Get().(*PooledEvent)
	pe.CE = ce
	pe.pool = p
	return pe
}

// Submit enqueues pe onto the ring, invoking the configured back-pressure
// strategy if the ring is currently full. ctx governs strategies that can
// block (Block, BlockWithTimeout, ExponentialBackoff).
func (p *EventPool) Submit(ctx context.Context, pe *PooledEvent) error {
	if p.ring.TryEnqueue(pe) {
		return nil
	}
	return p.bp.Handle(ctx, p.name, func() bool { return p.ring.TryEnqueue(pe) })
}

// TryTake removes the next pooled event without blocking.
func (p *EventPool) TryTake() (*PooledEvent, bool) {
	v, ok := p.ring.TryDequeue()
	if !ok {
		return nil, false
	}
	return v.(*PooledEvent), true
}

// Len reports current ring occupancy.
func (p *EventPool) Len() int { return p.ring.Len() }

// Capacity reports the ring's slot count.
func (p *EventPool) Capacity() int { return p.ring.Capacity() }

// Name returns the pool's label, used for metrics and log scoping.
func (p *EventPool) Name() string { return p.name }
