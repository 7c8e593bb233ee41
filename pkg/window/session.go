package window

import (
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/processor"
)

type sessionState struct {
	start    int64
	lastSeen int64
	events   []*event.ComplexEvent
}

// Session groups events by a key expression, closing and forwarding a
// session (Current events, then the same events tagged Expired) once no
// event for that key has arrived for gapNanos, or — if maxDurNanos is
// nonzero — once the session has been open that long regardless of gap.
type Session struct {
	base
	keyExtractor expr.Executor
	gapNanos     int64
	maxDurNanos  int64

	sessions map[any]*sessionState
}

// NewSession builds a Session(gap, maxDur) window keyed by keyExtractor.
// A zero maxDur means sessions never force-close on duration alone.
func NewSession(name string, keyExtractor expr.Executor, gap, maxDur time.Duration) *Session {
	return &Session{
		base:         base{name: name},
		keyExtractor: keyExtractor,
		gapNanos:     gap.Nanoseconds(),
		maxDurNanos:  maxDur.Nanoseconds(),
		sessions:     make(map[any]*sessionState),
	}
}

func (w *Session) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; {
		next := n.Next
		n.Next = nil
		if n.EventType == event.Timer {
			w.expireIdle(n.Timestamp)
		} else {
			w.accept(n)
		}
		n = next
	}
}

func (w *Session) accept(ce *event.ComplexEvent) {
	key := w.keyExtractor(ce).HashKey()

	w.mu.Lock()
	var closed *event.ComplexEvent
	st, ok := w.sessions[key]
	if ok && w.maxDurNanos > 0 && ce.Timestamp-st.start >= w.maxDurNanos {
		closed = w.closeLocked(key)
		ok = false
	}
	if !ok {
		st = &sessionState{start: ce.Timestamp}
		w.sessions[key] = st
	}
	st.events = append(st.events, ce)
	st.lastSeen = ce.Timestamp
	w.mu.Unlock()

	if closed != nil {
		w.Forward(closed)
	}
}

func (w *Session) expireIdle(now int64) {
	w.mu.Lock()
	var stale []any
	for key, st := range w.sessions {
		if now-st.lastSeen >= w.gapNanos || (w.maxDurNanos > 0 && now-st.start >= w.maxDurNanos) {
			stale = append(stale, key)
		}
	}
	var chains []*event.ComplexEvent
	for _, key := range stale {
		if c := w.closeLocked(key); c != nil {
			chains = append(chains, c)
		}
	}
	w.mu.Unlock()

	for _, c := range chains {
		w.Forward(c)
	}
}

// closeLocked must be called with w.mu held. It removes the session for
// key and returns its retained events as a Current-then-Expired chain, or
// nil if the key wasn't open.
func (w *Session) closeLocked(key any) *event.ComplexEvent {
	st, ok := w.sessions[key]
	if !ok {
		return nil
	}
	delete(w.sessions, key)
	if len(st.events) == 0 {
		return nil
	}
	w.emitExpired(len(st.events))

	var head, tail *event.ComplexEvent
	for _, ce := range st.events {
		if head == nil {
			head = ce
		} else {
			tail.Next = ce
		}
		tail = ce
	}
	for _, ce := range st.events {
		exp := event.NewExpired(ce)
		tail.Next = exp
		tail = exp
	}
	return head
}

// Snapshot returns the events of every open session without mutating
// the window; events of one session are in arrival order, and the order
// of sessions relative to each other is not defined.
func (w *Session) Snapshot() []*event.ComplexEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*event.ComplexEvent
	for _, st := range w.sessions {
		out = append(out, st.events...)
	}
	return out
}

func (w *Session) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewSession(w.name, w.keyExtractor, time.Duration(w.gapNanos), time.Duration(w.maxDurNanos))
}

func (w *Session) IsStateful() bool               { return true }
func (w *Session) ProcessingMode() processor.Mode { return processor.TimerAligned }
