package runtime

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/processor"
)

// partitionRouter subscribes to a partition's input junction and routes
// each Current complex-event to the clone of the template chain matching
// its key, broadcasting control events (Reset/Timer) to every
// materialised clone so window/aggregator state everywhere observes
// them.
type partitionRouter struct {
	key         expr.Executor
	partitioner *processor.Partitioner
}

func (r *partitionRouter) Process(chunk *event.ComplexEvent) {
	for ce := chunk; ce != nil; {
		next := ce.Next
		ce.Next = nil
		if ce.EventType == event.Current {
			key := r.key(ce).String()
			r.partitioner.ChainFor(key).Process(ce)
		} else {
			for _, k := range r.partitioner.Keys() {
				r.partitioner.ChainFor(k).Process(ce.Clone())
			}
		}
		ce = next
	}
}

// buildPartition compiles one PARTITION BY group: the By expression is
// compiled against Input's attribute scope, and each inner query's chain
// is built once as a template and cloned per key via
// processor.Partitioner, the way a regular query's chain is built but
// never itself subscribed to the input junction directly.
func buildPartition(ctx *appContext, rt *AppRuntime, p Partition) error {
	inputDef, ok := rt.definitions[p.Input]
	if !ok {
		return compileErr("partition %q: unknown input stream %q", p.ID, p.Input)
	}
	inJunction := rt.junctions[p.Input]

	sc := newScope()
	sc.add("", inputDef.Attributes)
	keyExec, err := compileExpr(p.By, sc, ctx.engine.functions)
	if err != nil {
		return compileErrWrap(err, "partition %q by", p.ID)
	}

	for i := range p.Queries {
		q := p.Queries[i]
		if q.From == nil || q.From.StreamID != p.Input {
			return compileErr("partition %q: inner query %q must source From.StreamID %q", p.ID, q.ID, p.Input)
		}
		if _, exists := rt.junctions[q.ID]; exists {
			return compileErr("duplicate query/stream id %q", q.ID)
		}

		template, _, outJunction, err := compilePlainQueryChain(ctx, rt, q)
		if err != nil {
			return compileErrWrap(err, "partition %q query %q", p.ID, q.ID)
		}

		partitioner := processor.NewPartitioner(template, processor.QueryContext{QueryID: q.ID})
		inJunction.Subscribe(&partitionRouter{key: keyExec, partitioner: partitioner})

		if err := wireInsertInto(ctx, rt, q, outJunction); err != nil {
			return err
		}
	}

	return nil
}
