// Package pool provides the bounded object pool and back-pressure layer
// that sits between a stream junction's producers and its subscribers,
// absorbing bursts without unbounded memory growth.
package pool

import "sync/atomic"

type ringSlot struct {
	sequence uint64
	value    any
}

// Ring is a bounded, lock-free multi-producer/multi-consumer circular
// buffer. Capacity is rounded up to the next power of two so slot lookup
// reduces to a mask instead of a modulo.
type Ring struct {
	mask    uint64
	buf     []ringSlot
	enqueue uint64
	dequeue uint64
}

// NewRing allocates a ring sized to the next power of two at or above
// capacity.
func NewRing(capacity int) *Ring {
	size := nextPowerOfTwo(capacity)
	buf := make([]ringSlot, size)
	for i := range buf {
		buf[i].sequence = uint64(i)
	}
	return &Ring{mask: uint64(size - 1), buf: buf}
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Capacity returns the ring's slot count (a power of two).
func (r *Ring) Capacity() int { return len(r.buf) }

// TryEnqueue places value in the ring without blocking. Returns false if
// the ring is full.
func (r *Ring) TryEnqueue(value any) bool {
	for {
		pos := atomic.LoadUint64(&r.enqueue)
		slot := &r.buf[pos&r.mask]
		seq := atomic.LoadUint64(&slot.sequence)
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.enqueue, pos, pos+1) {
				slot.value = value
				atomic.StoreUint64(&slot.sequence, pos+1)
				return true
			}
		case diff < 0:
			return false
		default:
			// another producer raced ahead of us, retry from the current position
		}
	}
}

// TryDequeue removes the next value without blocking. Returns false if the
// ring is empty.
func (r *Ring) TryDequeue() (any, bool) {
	for {
		pos := atomic.LoadUint64(&r.dequeue)
		slot := &r.buf[pos&r.mask]
		seq := atomic.LoadUint64(&slot.sequence)
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if atomic.CompareAndSwapUint64(&r.dequeue, pos, pos+1) {
				v := slot.value
				slot.value = nil
				atomic.StoreUint64(&slot.sequence, pos+r.mask+1)
				return v, true
			}
		case diff < 0:
			return nil, false
		default:
		}
	}
}

// Len reports the current occupancy. Approximate under concurrent access,
// exact once producers and consumers quiesce.
func (r *Ring) Len() int {
	enq := atomic.LoadUint64(&r.enqueue)
	deq := atomic.LoadUint64(&r.dequeue)
	return int(enq - deq)
}
