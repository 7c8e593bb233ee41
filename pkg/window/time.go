package window

import (
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// Time is a sliding window retaining every event whose ts+duration is
// still in the future relative to the latest clock reading. Expiry is
// checked both on new arrivals and on Clock-injected Timer ticks, so a
// window with no new input still drains on schedule.
type Time struct {
	base
	durationNanos int64
	buffer        []*event.ComplexEvent
}

// NewTime builds a Time(duration) window.
func NewTime(name string, duration time.Duration) *Time {
	return &Time{base: base{name: name}, durationNanos: duration.Nanoseconds()}
}

func (w *Time) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; {
		next := n.Next
		n.Next = nil
		if n.EventType == event.Timer {
			w.processTimer(n)
		} else {
			w.processCurrent(n)
		}
		n = next
	}
}

func (w *Time) processCurrent(ce *event.ComplexEvent) {
	w.mu.Lock()
	expired := w.expireLocked(ce.Timestamp)
	w.buffer = append(w.buffer, ce.Clone())
	w.mu.Unlock()

	out := ce
	if expired != nil {
		out = event.Append(out, expired)
	}
	w.Forward(out)
}

func (w *Time) processTimer(timerCE *event.ComplexEvent) {
	w.mu.Lock()
	expired := w.expireLocked(timerCE.Timestamp)
	w.mu.Unlock()

	if expired != nil {
		w.Forward(expired)
	}
}

// expireLocked must be called with w.mu held. It pops every retained
// event whose retention has elapsed as of now and returns them chained
// together as Expired nodes in arrival order, or nil if none expired.
func (w *Time) expireLocked(now int64) *event.ComplexEvent {
	i := 0
	for ; i < len(w.buffer); i++ {
		if w.buffer[i].Timestamp+w.durationNanos > now {
			break
		}
	}
	if i == 0 {
		return nil
	}

	var head, tail *event.ComplexEvent
	for _, ce := range w.buffer[:i] {
		exp := event.NewExpired(ce)
		if head == nil {
			head = exp
		} else {
			tail.Next = exp
		}
		tail = exp
	}
	w.buffer = w.buffer[i:]
	w.emitExpired(i)
	return head
}

// Snapshot returns the currently retained events in arrival order,
// without mutating the window. A join coordinator scans this to find
// candidates on the opposite side.
func (w *Time) Snapshot() []*event.ComplexEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*event.ComplexEvent, len(w.buffer))
	copy(out, w.buffer)
	return out
}

func (w *Time) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewTime(w.name, time.Duration(w.durationNanos))
}

func (w *Time) IsStateful() bool               { return true }
func (w *Time) ProcessingMode() processor.Mode { return processor.TimerAligned }
