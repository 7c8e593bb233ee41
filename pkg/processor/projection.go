package processor

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
)

// Projection rewrites each Current/Expired node's OutputData to the
// compiled selector expressions' results, in order. Reset/Timer control
// events pass through with their data untouched since they carry no
// projected attributes.
type Projection struct {
	Base
	Selectors []expr.Executor
}

// NewProjection builds a Projection over the given ordered selector list,
// e.g. `select count() as c, sym as s`.
func NewProjection(selectors []expr.Executor) *Projection {
	return &Projection{Selectors: selectors}
}

func (p *Projection) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; n = n.Next {
		if n.EventType != event.Current && n.EventType != event.Expired {
			continue
		}
		out := make([]event.Value, len(p.Selectors))
		for i, sel := range p.Selectors {
			out[i] = sel(n)
		}
		n.OutputData = out
	}
	p.Forward(chunk)
}

func (p *Projection) Clone(qctx *QueryContext) Processor {
	return &Projection{Selectors: p.Selectors}
}

func (p *Projection) IsStateful() bool     { return false }
func (p *Projection) ProcessingMode() Mode { return Default }
