// Package join implements the engine's two-sided buffered join and its
// stream-to-table variant. A join is not itself a linear processor.Processor
// stage: it is fed by two independent chains, each ending at one side's
// retention window, and each side scans the other's buffer on arrival.
package join

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/processor"
)

// Type is the join's outer-join behavior.
type Type int

const (
	Inner Type = iota
	LeftOuter
	RightOuter
	FullOuter
)

func (t Type) String() string {
	switch t {
	case Inner:
		return "inner"
	case LeftOuter:
		return "left-outer"
	case RightOuter:
		return "right-outer"
	case FullOuter:
		return "full-outer"
	default:
		return "unknown"
	}
}

// WindowBuffer is any retention window a join coordinator can scan for
// opposite-side candidates; window.Length, window.Time, window.Session,
// and window.Sort all satisfy it.
type WindowBuffer interface {
	Snapshot() []*event.ComplexEvent
}

// Coordinator is a two-sided buffered join: on arrival from side S it
// scans the opposite side's retained buffer, evaluates the on-condition
// against each candidate pairing, and forwards a joined event per match
// (or, for the configured outer-join side, a single null-padded event
// when no candidate matched).
type Coordinator struct {
	joinType   Type
	left       WindowBuffer
	right      WindowBuffer
	leftWidth  int
	rightWidth int
	condition  expr.Executor
	next       processor.Processor
}

// New builds a Coordinator. leftWidth/rightWidth are the attribute counts
// each side contributes to a joined event's OutputData, used to null-pad
// the missing side on an outer-join miss.
func New(joinType Type, left, right WindowBuffer, leftWidth, rightWidth int, condition expr.Executor) *Coordinator {
	return &Coordinator{
		joinType:   joinType,
		left:       left,
		right:      right,
		leftWidth:  leftWidth,
		rightWidth: rightWidth,
		condition:  condition,
	}
}

// SetNext wires the processor that receives every joined event.
func (c *Coordinator) SetNext(next processor.Processor) { c.next = next }

// Left returns the processor.Processor to attach as the next stage of
// the left side's chain (after its window).
func (c *Coordinator) Left() processor.Processor { return &side{c: c, fromLeft: true} }

// Right returns the processor.Processor to attach as the next stage of
// the right side's chain (after its window).
func (c *Coordinator) Right() processor.Processor { return &side{c: c, fromLeft: false} }

func (c *Coordinator) match(ce *event.ComplexEvent, fromLeft bool) {
	var opposite []*event.ComplexEvent
	if fromLeft {
		opposite = c.right.Snapshot()
	} else {
		opposite = c.left.Snapshot()
	}

	matched := 0
	for _, cand := range opposite {
		var merged *event.ComplexEvent
		if fromLeft {
			merged = c.merge(ce, cand)
		} else {
			merged = c.merge(cand, ce)
		}
		if expr.Bool(c.condition, merged) {
			matched++
			c.forward(merged)
		}
	}

	if matched > 0 {
		return
	}
	switch {
	case c.joinType == LeftOuter && fromLeft,
		c.joinType == RightOuter && !fromLeft,
		c.joinType == FullOuter:
		if fromLeft {
			c.forward(c.merge(ce, nil))
		} else {
			c.forward(c.merge(nil, ce))
		}
	}
}

func (c *Coordinator) forward(ce *event.ComplexEvent) {
	if c.next != nil {
		c.next.Process(ce)
	}
}

func (c *Coordinator) merge(left, right *event.ComplexEvent) *event.ComplexEvent {
	out := make([]event.Value, 0, c.leftWidth+c.rightWidth)
	var ts int64
	if left != nil {
		out = append(out, left.OutputData...)
		ts = left.Timestamp
	} else {
		out = append(out, nullRow(c.leftWidth)...)
	}
	if right != nil {
		out = append(out, right.OutputData...)
		if left == nil {
			ts = right.Timestamp
		}
	} else {
		out = append(out, nullRow(c.rightWidth)...)
	}
	return &event.ComplexEvent{Timestamp: ts, EventType: event.Current, OutputData: out}
}

func nullRow(n int) []event.Value {
	row := make([]event.Value, n)
	for i := range row {
		row[i] = event.Null()
	}
	return row
}

// side is the per-side adapter attached as the next processor after a
// window; it has no downstream of its own, since the joined output is
// forwarded through the shared Coordinator instead.
type side struct {
	processor.Base
	c        *Coordinator
	fromLeft bool
}

// Process reacts only to Current events; a window's Expired nodes mean
// an event left the retention buffer, which Snapshot already reflects,
// so there is nothing further for the join to do with them.
func (s *side) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; n = n.Next {
		if n.EventType != event.Current {
			continue
		}
		s.c.match(n, s.fromLeft)
	}
}

func (s *side) Clone(qctx *processor.QueryContext) processor.Processor {
	return &side{c: s.c, fromLeft: s.fromLeft}
}

func (s *side) IsStateful() bool               { return true }
func (s *side) ProcessingMode() processor.Mode { return processor.Default }
