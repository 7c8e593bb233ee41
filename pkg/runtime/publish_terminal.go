package runtime

import (
	"context"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/junction"
	"github.com/corestream/corestream/pkg/processor"
)

// publishTerminal is a chain's final stage: it republishes the chain it
// receives onto another junction, the way a query's compiled pipeline
// always ends by publishing its projected result onto its own output
// junction, and "insert into stream" reuses the same terminal pointed at
// an existing stream's junction.
type publishTerminal struct {
	processor.Base
	target *junction.Junction
	onErr  func(error)
}

func newPublishTerminal(target *junction.Junction, onErr func(error)) *publishTerminal {
	return &publishTerminal{target: target, onErr: onErr}
}

func (p *publishTerminal) Process(chunk *event.ComplexEvent) {
	if err := p.target.PublishBatch(context.Background(), chunk); err != nil && p.onErr != nil {
		p.onErr(err)
	}
}

func (p *publishTerminal) Clone(qctx *processor.QueryContext) processor.Processor {
	return &publishTerminal{target: p.target, onErr: p.onErr}
}

func (p *publishTerminal) IsStateful() bool               { return false }
func (p *publishTerminal) ProcessingMode() processor.Mode { return processor.Default }
