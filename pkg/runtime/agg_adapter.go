package runtime

import (
	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
)

// aggExecAdapter makes an aggregation.Executor chain usable as a regular
// processor.Processor terminal, since the executor's own Process method
// already matches everything but the interface's bookkeeping methods.
type aggExecAdapter struct {
	executor *aggregation.Executor
}

func (a *aggExecAdapter) Process(ce *event.ComplexEvent)                { a.executor.Process(ce) }
func (a *aggExecAdapter) SetNext(processor.Processor)                    {}
func (a *aggExecAdapter) Next() processor.Processor                     { return nil }
func (a *aggExecAdapter) Clone(*processor.QueryContext) processor.Processor { return a }
func (a *aggExecAdapter) IsStateful() bool                              { return true }
func (a *aggExecAdapter) ProcessingMode() processor.Mode                { return processor.Default }
