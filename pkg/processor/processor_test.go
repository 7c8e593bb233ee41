package processor

import (
	"testing"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

// countingProcessor records how many chunks it has seen and forwards
// every chunk downstream; Clone produces an independent counter.
type countingProcessor struct {
	Base
	name  string
	count int
}

func (c *countingProcessor) Process(chunk *event.ComplexEvent) {
	c.count++
	c.Forward(chunk)
}

func (c *countingProcessor) Clone(qctx *QueryContext) Processor {
	return &countingProcessor{name: c.name}
}

func (c *countingProcessor) IsStateful() bool     { return true }
func (c *countingProcessor) ProcessingMode() Mode { return Default }

func TestChain_LinksProcessorsInOrder(t *testing.T) {
	a := &countingProcessor{name: "a"}
	b := &countingProcessor{name: "b"}
	head := Chain(a, b)

	require.Same(t, a, head)
	require.Same(t, Processor(b), a.Next())
	require.Nil(t, b.Next())

	head.Process(&event.ComplexEvent{Timestamp: 1})
	require.Equal(t, 1, a.count)
	require.Equal(t, 1, b.count)
}

func TestChain_EmptyReturnsNil(t *testing.T) {
	require.Nil(t, Chain())
}

func TestCloneChain_ProducesIndependentCounters(t *testing.T) {
	a := &countingProcessor{name: "a"}
	b := &countingProcessor{name: "b"}
	head := Chain(a, b)

	clone := CloneChain(head, &QueryContext{QueryID: "q1"})
	clone.Process(&event.ComplexEvent{Timestamp: 1})

	require.Equal(t, 0, a.count, "original chain must be untouched by the clone")
	cloneHead := clone.(*countingProcessor)
	require.Equal(t, 1, cloneHead.count)
}

func TestPartitioner_LazilyClonesPerKey(t *testing.T) {
	template := Chain(&countingProcessor{name: "a"})
	part := NewPartitioner(template, QueryContext{QueryID: "q1"})

	chainA := part.ChainFor("key-a")
	chainA.Process(&event.ComplexEvent{Timestamp: 1})
	chainA2 := part.ChainFor("key-a")
	require.Same(t, chainA, chainA2, "same key must return the same chain instance")

	chainB := part.ChainFor("key-b")
	require.NotSame(t, chainA, chainB)

	require.Equal(t, 1, chainA.(*countingProcessor).count)
	require.Equal(t, 0, chainB.(*countingProcessor).count)
	require.Equal(t, 2, part.Count())
}
