package window

import (
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// TimeBatch is a tumbling window: arriving events accumulate in a bucket
// with no per-event forwarding, and the whole bucket is released —
// Current events first, then the same events tagged Expired — once a
// Clock-injected Timer tick observes the bucket has been open for at
// least duration.
type TimeBatch struct {
	base
	durationNanos int64
	bucketStart   int64
	bucket        []*event.ComplexEvent
}

// NewTimeBatch builds a TimeBatch(duration) window.
func NewTimeBatch(name string, duration time.Duration) *TimeBatch {
	return &TimeBatch{base: base{name: name}, durationNanos: duration.Nanoseconds()}
}

func (w *TimeBatch) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; {
		next := n.Next
		n.Next = nil
		if n.EventType == event.Timer {
			w.maybeClose(n.Timestamp)
		} else {
			w.accept(n)
		}
		n = next
	}
}

func (w *TimeBatch) accept(ce *event.ComplexEvent) {
	w.mu.Lock()
	if w.bucketStart == 0 {
		w.bucketStart = ce.Timestamp
	}
	w.bucket = append(w.bucket, ce)
	w.mu.Unlock()
}

func (w *TimeBatch) maybeClose(now int64) {
	w.mu.Lock()
	if len(w.bucket) == 0 || now-w.bucketStart < w.durationNanos {
		w.mu.Unlock()
		return
	}
	bucket := w.bucket
	w.bucket = nil
	w.bucketStart = 0
	w.mu.Unlock()

	w.emitExpired(len(bucket))

	var head, tail *event.ComplexEvent
	for _, ce := range bucket {
		if head == nil {
			head = ce
		} else {
			tail.Next = ce
		}
		tail = ce
	}
	for _, ce := range bucket {
		exp := event.NewExpired(ce)
		tail.Next = exp
		tail = exp
	}
	w.Forward(head)
}

// Snapshot returns the events of the currently open bucket in arrival
// order, without mutating the window.
func (w *TimeBatch) Snapshot() []*event.ComplexEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*event.ComplexEvent, len(w.bucket))
	copy(out, w.bucket)
	return out
}

func (w *TimeBatch) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewTimeBatch(w.name, time.Duration(w.durationNanos))
}

func (w *TimeBatch) IsStateful() bool               { return true }
func (w *TimeBatch) ProcessingMode() processor.Mode { return processor.TimerAligned }
