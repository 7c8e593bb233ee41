package window

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// Length is a FIFO window of fixed size N. The (N+1)th arrival evicts the
// oldest retained event, forwarding it downstream tagged Expired right
// after the arriving Current.
type Length struct {
	base
	size   int
	buffer []*event.ComplexEvent
}

// NewLength builds a Length(N) window.
func NewLength(name string, size int) *Length {
	return &Length{base: base{name: name}, size: size}
}

func (w *Length) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; {
		next := n.Next
		n.Next = nil
		w.processOne(n)
		n = next
	}
}

func (w *Length) processOne(ce *event.ComplexEvent) {
	w.mu.Lock()
	w.buffer = append(w.buffer, ce.Clone())
	var expired *event.ComplexEvent
	if len(w.buffer) > w.size {
		head := w.buffer[0]
		w.buffer = w.buffer[1:]
		expired = event.NewExpired(head)
	}
	w.mu.Unlock()

	out := ce
	if expired != nil {
		out = event.Append(out, expired)
		w.emitExpired(1)
	}
	w.Forward(out)
}

// Snapshot returns the currently retained events in arrival order,
// without mutating the window. A join coordinator scans this to find
// candidates on the opposite side.
func (w *Length) Snapshot() []*event.ComplexEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*event.ComplexEvent, len(w.buffer))
	copy(out, w.buffer)
	return out
}

func (w *Length) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewLength(w.name, w.size)
}

func (w *Length) IsStateful() bool               { return true }
func (w *Length) ProcessingMode() processor.Mode { return processor.Default }
