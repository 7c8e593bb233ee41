package table

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// InsertProcessor is the insert-into-table chain terminal: every
// Current/Expired node's OutputData becomes one inserted row. It never
// forwards, the same way a callback terminal ends a chain without a
// Next.
type InsertProcessor struct {
	processor.Base
	Target  Table
	OnError func(err error)
}

// NewInsertProcessor builds a terminal that inserts into target. onError,
// if non-nil, is invoked for a backend insert failure instead of silently
// dropping it; an app runtime wires this to the owning junction's fault
// path.
func NewInsertProcessor(target Table, onError func(err error)) *InsertProcessor {
	return &InsertProcessor{Target: target, OnError: onError}
}

func (p *InsertProcessor) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; n = n.Next {
		if n.EventType != event.Current && n.EventType != event.Expired {
			continue
		}
		if err := p.Target.Insert(CloneRow(n.OutputData)); err != nil && p.OnError != nil {
			p.OnError(err)
		}
	}
}

func (p *InsertProcessor) Clone(qctx *processor.QueryContext) processor.Processor {
	return &InsertProcessor{Target: p.Target, OnError: p.OnError}
}

func (p *InsertProcessor) IsStateful() bool            { return false }
func (p *InsertProcessor) ProcessingMode() processor.Mode { return processor.Default }
