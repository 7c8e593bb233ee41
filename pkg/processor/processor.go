// Package processor defines the processing-node contract every chain
// element implements — filters, projections, windows, joins, aggregators,
// and chain terminals — plus the machinery to link and clone chains.
package processor

import "github.com/corestream/corestream/pkg/event"

// Mode hints the planner how a processor wants to be scheduled.
type Mode int

const (
	// Default processes one complex-event chain per call, on whatever
	// thread delivers it.
	Default Mode = iota
	// Batch processes accumulated input only at an explicit flush point.
	// No built-in processor reports it; window.TimeBatch, which releases
	// its bucket on a Timer tick, reports TimerAligned.
	Batch
	// TimerAligned must run on the scheduler's Timer tick rather than
	// purely in response to input.
	TimerAligned
)

// QueryContext is the per-query compile-time state available to a
// processor when it clones itself for a partition — e.g. the key that
// identifies this partition's independent copy of aggregator state.
type QueryContext struct {
	QueryID       string
	PartitionKey  string
}

// Processor is every node in a compiled chain. A chain is built once at
// query-compile time; runtime mutation is never structural, only data
// flows through it.
type Processor interface {
	// Process consumes an owned complex-event chain. The receiver either
	// forwards it (via Next) or is a terminal and drops it.
	Process(chunk *event.ComplexEvent)
	SetNext(next Processor)
	Next() Processor
	// Clone deep-copies this processor (and any owned state) for an
	// independent partition.
	Clone(qctx *QueryContext) Processor
	IsStateful() bool
	ProcessingMode() Mode
}

// Base provides the SetNext/Next bookkeeping every concrete processor
// embeds, the way a middleware stage threads a "next" handler through the
// chain it's wired into.
type Base struct {
	next Processor
}

func (b *Base) SetNext(next Processor) { b.next = next }
func (b *Base) Next() Processor        { return b.next }

// Forward passes chunk to the next processor in the chain, if any; a
// terminal's Process should not call Forward.
func (b *Base) Forward(chunk *event.ComplexEvent) {
	if b.next != nil {
		b.next.Process(chunk)
	}
}

// Chain links procs in order and returns the head. An empty call returns
// nil.
func Chain(procs ...Processor) Processor {
	if len(procs) == 0 {
		return nil
	}
	for i := 0; i < len(procs)-1; i++ {
		procs[i].SetNext(procs[i+1])
	}
	return procs[0]
}

// CloneChain deep-clones every processor from head onward, relinking the
// clones in the same order, for an independent partition.
func CloneChain(head Processor, qctx *QueryContext) Processor {
	if head == nil {
		return nil
	}
	cloned := make([]Processor, 0, 4)
	for p := head; p != nil; p = p.Next() {
		cloned = append(cloned, p.Clone(qctx))
	}
	return Chain(cloned...)
}
