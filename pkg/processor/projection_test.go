package processor

import (
	"testing"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/stretchr/testify/require"
)

func TestProjection_RewritesOutputData(t *testing.T) {
	sink := &capturingProcessor{}
	p := NewProjection([]expr.Executor{expr.AttributeRef(1), expr.AttributeRef(0)})
	p.SetNext(sink)

	in := &event.ComplexEvent{
		EventType:  event.Current,
		OutputData: []event.Value{event.Int(1), event.String("a")},
	}
	p.Process(in)

	require.Len(t, sink.seen, 1)
	require.Equal(t, event.String("a"), sink.seen[0].OutputData[0])
	require.Equal(t, event.Int(1), sink.seen[0].OutputData[1])
}

func TestProjection_LeavesControlEventsUntouched(t *testing.T) {
	sink := &capturingProcessor{}
	p := NewProjection([]expr.Executor{expr.AttributeRef(0)})
	p.SetNext(sink)

	p.Process(event.NewReset(5))

	require.Len(t, sink.seen, 1)
	require.Nil(t, sink.seen[0].OutputData)
}

type capturingProcessor struct {
	Base
	seen []*event.ComplexEvent
}

func (c *capturingProcessor) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; n = n.Next {
		c.seen = append(c.seen, n)
	}
}
func (c *capturingProcessor) Clone(qctx *QueryContext) Processor { return &capturingProcessor{} }
func (c *capturingProcessor) IsStateful() bool                   { return false }
func (c *capturingProcessor) ProcessingMode() Mode               { return Default }
