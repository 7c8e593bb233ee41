package window

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// sink is a terminal processor.Processor that records every chunk it
// sees, flattening each forwarded chain into individual nodes for easy
// assertion.
type sink struct {
	processor.Base
	received []*event.ComplexEvent
}

func (s *sink) Process(chunk *event.ComplexEvent) {
	event.Each(chunk, func(n *event.ComplexEvent) {
		s.received = append(s.received, n)
	})
}

func (s *sink) Clone(qctx *processor.QueryContext) processor.Processor { return &sink{} }
func (s *sink) IsStateful() bool                                       { return false }
func (s *sink) ProcessingMode() processor.Mode                         { return processor.Default }

func (s *sink) currentCount() int {
	n := 0
	for _, ce := range s.received {
		if ce.EventType == event.Current {
			n++
		}
	}
	return n
}

func (s *sink) expiredCount() int {
	n := 0
	for _, ce := range s.received {
		if ce.EventType == event.Expired {
			n++
		}
	}
	return n
}
