package processor

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
)

// Filter forwards only the chain nodes whose compiled condition evaluates
// true; Expired/Reset/Timer control events always pass through untouched
// since a filter only narrows Current data, never a window's bookkeeping.
type Filter struct {
	Base
	Condition expr.Executor
}

// NewFilter builds a Filter processor over cond.
func NewFilter(cond expr.Executor) *Filter {
	return &Filter{Condition: cond}
}

func (f *Filter) Process(chunk *event.ComplexEvent) {
	var head, tail *event.ComplexEvent
	for n := chunk; n != nil; {
		next := n.Detach()
		if n.EventType != event.Current || expr.Bool(f.Condition, n) {
			if head == nil {
				head = n
			} else {
				tail.Next = n
			}
			tail = n
		}
		n = next
	}
	if head != nil {
		f.Forward(head)
	}
}

func (f *Filter) Clone(qctx *QueryContext) Processor {
	return &Filter{Condition: f.Condition}
}

func (f *Filter) IsStateful() bool    { return false }
func (f *Filter) ProcessingMode() Mode { return Default }
