package runtime

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/join"
	"github.com/corestream/corestream/pkg/junction"
	"github.com/corestream/corestream/pkg/processor"
	"github.com/corestream/corestream/pkg/table"
	"github.com/corestream/corestream/pkg/window"
)

// createAppRuntime performs the leaves-first compile of an AppDefinition:
// stream defs → tables → aggregations → triggers → queries → partitions,
// each stage able to reference anything built in an earlier stage
// (spec.md §4.J).
func createAppRuntime(ctx *appContext, def *AppDefinition) (*AppRuntime, error) {
	rt := newAppRuntime(def.Name)

	if err := buildStreams(ctx, rt, def.StreamDefs); err != nil {
		return nil, err
	}
	if err := buildTables(ctx, rt, def.TableDefs); err != nil {
		return nil, err
	}
	for i := range def.AggregationDefs {
		if err := buildAggregation(ctx, rt, def.AggregationDefs[i]); err != nil {
			return nil, err
		}
	}
	if err := buildTriggers(rt, def.TriggerDefs); err != nil {
		return nil, err
	}
	for i := range def.Queries {
		if err := buildQuery(ctx, rt, def.Queries[i]); err != nil {
			return nil, err
		}
	}
	for i := range def.Partitions {
		if err := buildPartition(ctx, rt, def.Partitions[i]); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

func onErrorAction(name string) junction.OnErrorAction {
	switch name {
	case "stream":
		return junction.Stream
	case "store":
		return junction.Store
	case "drop":
		return junction.Drop
	default:
		return junction.Log
	}
}

// buildStreams constructs every junction up front (so any stream can
// name any other as its fault sink, regardless of declaration order),
// wires fault sinks in a second pass, then resolves any named source
// attachment (StreamDef.SourceName) against the EngineContext.
func buildStreams(ctx *appContext, rt *AppRuntime, defs []StreamDef) error {
	for _, d := range defs {
		if _, exists := rt.junctions[d.ID]; exists {
			return compileErr("duplicate stream id %q", d.ID)
		}
		streamDef := &event.StreamDefinition{ID: d.ID, Attributes: d.Attributes}
		mode := junction.Sync
		if d.Async {
			mode = junction.Async
		}
		j := junction.New(junction.Config{
			ID:         d.ID,
			Definition: streamDef,
			Mode:       mode,
			Capacity:   d.Capacity,
			Consumers:  d.Consumers,
			OnError:    onErrorAction(d.OnError),
		})
		rt.junctions[d.ID] = j
		rt.definitions[d.ID] = streamDef
	}

	for _, d := range defs {
		if d.OnError != "stream" {
			continue
		}
		fault, ok := rt.junctions[d.FaultStreamID]
		if !ok {
			return compileErr("stream %q: unknown fault_stream_id %q", d.ID, d.FaultStreamID)
		}
		rt.junctions[d.ID].SetFaultJunction(fault)
	}

	for _, d := range defs {
		if d.SourceName == "" {
			continue
		}
		src, err := resolveSource(ctx, d.SourceName, d.SourceParams)
		if err != nil {
			return compileErrWrap(err, "stream %q source %q", d.ID, d.SourceName)
		}
		j := rt.junctions[d.ID]
		rt.sources = append(rt.sources, boundSource{
			source: src,
			publish: func(values []event.Value) error {
				return publishCurrent(context.Background(), j, rt.barrier, values)
			},
		})
	}
	return nil
}

// resolveSource looks up name first as a pre-built Source registered via
// Manager.AddDataSource, then as a SourceFactory registered via
// Manager.AddSourceFactory, constructed with params.
func resolveSource(ctx *appContext, name string, params map[string]any) (Source, error) {
	if src, ok := ctx.engine.dataSource(name); ok {
		return src, nil
	}
	factory, ok := ctx.engine.sourceFactory(name)
	if !ok {
		return nil, compileErr("no data source or source factory registered for %q", name)
	}
	return factory(params)
}

func buildTables(ctx *appContext, rt *AppRuntime, defs []TableDef) error {
	for _, d := range defs {
		if _, exists := rt.tables[d.ID]; exists {
			return compileErr("duplicate table id %q", d.ID)
		}
		t, err := buildTable(ctx, d)
		if err != nil {
			return compileErrWrap(err, "table %q", d.ID)
		}
		rt.tables[d.ID] = t
		rt.tableAttrs[d.ID] = d.Attributes
		if snap, ok := t.(snapshotable); ok {
			rt.registry.Register("table."+d.ID, snap)
		}
	}
	return nil
}

// snapshotable is the local view of snapshot.Snapshotable, avoiding a
// direct dependency on the snapshot package's type here.
type snapshotable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

func buildTable(ctx *appContext, d TableDef) (table.Table, error) {
	switch d.Kind {
	case MemoryTable:
		return table.NewInMemory(d.ID), nil
	case CacheTable:
		return table.NewCache(d.ID, d.CacheSize), nil
	case BoltTable:
		db, err := bolt.Open(d.BoltPath, 0o600, nil)
		if err != nil {
			return nil, fmt.Errorf("opening bbolt file %q: %w", d.BoltPath, err)
		}
		return table.OpenBoltTable(db, d.ID)
	case CustomTable:
		factory, ok := ctx.engine.tableFactory(d.FactoryName)
		if !ok {
			return nil, compileErr("no table factory registered for %q", d.FactoryName)
		}
		return factory(d.ID, d.Params)
	default:
		return nil, compileErr("unknown table kind %d", d.Kind)
	}
}

// buildTriggers realises every TriggerDef as its own junction (carrying
// a single triggeredTime attribute) plus a triggerRuntime scheduled to
// publish onto it, compiled after aggregations and before queries so a
// query can read a trigger's stream like any other (spec.md §4.J order).
func buildTriggers(rt *AppRuntime, defs []TriggerDef) error {
	for _, d := range defs {
		if _, exists := rt.junctions[d.ID]; exists {
			return compileErr("duplicate stream/trigger id %q", d.ID)
		}
		interval, once, err := parseTriggerSchedule(d.At)
		if err != nil {
			return compileErrWrap(err, "trigger %q", d.ID)
		}

		streamDef := &event.StreamDefinition{
			ID:         d.ID,
			Attributes: []event.Attribute{{Name: "triggeredTime", Kind: event.KindLong}},
		}
		j := junction.New(junction.Config{
			ID:         d.ID,
			Definition: streamDef,
			Mode:       junction.Sync,
			OnError:    junction.Log,
		})
		rt.junctions[d.ID] = j
		rt.definitions[d.ID] = streamDef
		rt.triggers = append(rt.triggers, newTriggerRuntime(d.ID, j, rt.barrier, interval, once))
	}
	return nil
}

func buildAggregation(ctx *appContext, rt *AppRuntime, def AggregationDef) error {
	if len(def.Periods) == 0 {
		return compileErr("aggregation %q: at least one period is required", def.ID)
	}
	inputDef, ok := rt.definitions[def.Input]
	if !ok {
		return compileErr("aggregation %q: unknown input stream %q", def.ID, def.Input)
	}

	sc := newScope()
	sc.add("", inputDef.Attributes)

	groupBy := make([]expr.Executor, len(def.GroupBy))
	for i, g := range def.GroupBy {
		exec, err := compileExpr(g, sc, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "aggregation %q group by", def.ID)
		}
		groupBy[i] = exec
	}

	slots := make([]aggregation.SlotSpec, len(def.Select))
	for i, s := range def.Select {
		ctor, ok := builtinAggregator(s.Func)
		if !ok {
			factory, found := ctx.engine.aggregatorFactory(s.Func)
			if !found {
				return compileErr("aggregation %q: unknown aggregator %q", def.ID, s.Func)
			}
			proto, err := factory(nil)
			if err != nil {
				return compileErrWrap(err, "aggregation %q: aggregator %q", def.ID, s.Func)
			}
			ctor = proto.Clone
		}
		if len(s.Args) != 1 {
			return compileErr("aggregation %q: %q takes exactly one argument", def.ID, s.Func)
		}
		valueExec, err := compileExpr(s.Args[0], sc, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "aggregation %q slot %q", def.ID, s.Alias)
		}
		slots[i] = aggregation.SlotSpec{Name: s.Alias, Value: valueExec, New: ctor}
	}

	periods := make([]aggregation.Period, len(def.Periods))
	sinks := make([]aggregation.BucketSink, len(def.Periods))
	periodNames := make(map[string]struct{}, len(def.Periods))
	for i, p := range def.Periods {
		periods[i] = aggregation.Period{Name: p.Name, BucketNanos: p.Duration.Nanoseconds()}
		periodNames[p.Name] = struct{}{}

		var sink table.Table
		if i < len(def.StoreTableIDs) && def.StoreTableIDs[i] != "" {
			t, ok := rt.tables[def.StoreTableIDs[i]]
			if !ok {
				return compileErr("aggregation %q: unknown store table %q", def.ID, def.StoreTableIDs[i])
			}
			sink = t
		} else {
			name := def.ID + "." + p.Name
			mem := table.NewInMemory(name)
			rt.tables[name] = mem
			rt.registry.Register("aggregation."+name, mem)
			sink = mem
		}
		sinks[i] = sink
	}

	head := aggregation.NewChain(def.ID, periods, groupBy, slots, sinks)

	var filterExec expr.Executor
	if def.Filter != nil {
		exec, err := compileExpr(def.Filter, sc, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "aggregation %q filter", def.ID)
		}
		filterExec = exec
	}

	var chain processor.Processor
	adapter := &aggExecAdapter{executor: head}
	if filterExec != nil {
		f := processor.NewFilter(filterExec)
		chain = processor.Chain(f, adapter)
	} else {
		chain = adapter
	}

	rt.junctions[def.Input].Subscribe(chain)
	rt.aggregations[def.ID] = &aggregationRuntime{head: head, periods: periodNames}
	return nil
}

// buildQuery compiles one Query into a subscriber chain wired onto its
// input junction(s), ending in a publish onto the query's own output
// junction.
func buildQuery(ctx *appContext, rt *AppRuntime, q Query) error {
	if q.From != nil && q.Join != nil {
		return compileErr("query %q: From and Join are mutually exclusive", q.ID)
	}
	if q.From == nil && q.Join == nil {
		return compileErr("query %q: one of From or Join is required", q.ID)
	}

	if _, exists := rt.junctions[q.ID]; exists {
		return compileErr("duplicate query/stream id %q", q.ID)
	}

	if q.Join != nil {
		return buildJoinQuery(ctx, rt, q)
	}
	return buildPlainQuery(ctx, rt, q)
}

func buildPlainQuery(ctx *appContext, rt *AppRuntime, q Query) error {
	chain, inJunction, outJunction, err := compilePlainQueryChain(ctx, rt, q)
	if err != nil {
		return err
	}
	inJunction.Subscribe(chain)
	return wireInsertInto(ctx, rt, q, outJunction)
}

// compilePlainQueryChain builds a non-join query's processor chain and
// registers its output junction, without subscribing the chain to its
// input — plain buildPlainQuery subscribes it directly, while a
// partition's inner query instead clones it per key via
// processor.Partitioner.
func compilePlainQueryChain(ctx *appContext, rt *AppRuntime, q Query) (processor.Processor, *junction.Junction, *junction.Junction, error) {
	src := *q.From
	if src.StreamID == "" {
		return nil, nil, nil, compileErr("query %q: From.StreamID is required for a non-join query", q.ID)
	}
	inputDef, ok := rt.definitions[src.StreamID]
	if !ok {
		return nil, nil, nil, compileErr("query %q: unknown input stream %q", q.ID, src.StreamID)
	}
	inJunction := rt.junctions[src.StreamID]

	sc := newScope()
	sc.add("", inputDef.Attributes)

	procs := make([]processor.Processor, 0, 4)

	if src.Filter != nil {
		exec, err := compileExpr(src.Filter, sc, ctx.engine.functions)
		if err != nil {
			return nil, nil, nil, compileErrWrap(err, "query %q pre-window filter", q.ID)
		}
		procs = append(procs, processor.NewFilter(exec))
	}

	if src.Window != nil {
		win, err := buildWindowProcessor(ctx, src.Window, q.ID+".window", sc)
		if err != nil {
			return nil, nil, nil, compileErrWrap(err, "query %q window", q.ID)
		}
		procs = append(procs, win)
		registerTimerSink(rt, src.Window.Type, win)
	}

	if q.Having != nil {
		exec, err := compileExpr(q.Having, sc, ctx.engine.functions)
		if err != nil {
			return nil, nil, nil, compileErrWrap(err, "query %q having", q.ID)
		}
		procs = append(procs, processor.NewFilter(exec))
	}

	outAttrs, projection, err := buildProjection(q.Select, sc, ctx.engine.functions)
	if err != nil {
		return nil, nil, nil, compileErrWrap(err, "query %q select", q.ID)
	}
	if projection != nil {
		procs = append(procs, projection)
	}

	outJunction := newOutputJunction(q.ID, q.Async, q.Capacity, outAttrs)
	rt.junctions[q.ID] = outJunction
	rt.definitions[q.ID] = &event.StreamDefinition{ID: q.ID, Attributes: outAttrs}

	procs = append(procs, newPublishTerminal(outJunction, rt.logFault(q.ID)))
	chain := processor.Chain(procs...)

	return chain, inJunction, outJunction, nil
}

func buildJoinQuery(ctx *appContext, rt *AppRuntime, q Query) error {
	spec := q.Join

	if spec.Right.TableID != "" {
		return buildTableJoinQuery(ctx, rt, q)
	}
	if spec.Left.StreamID == "" || spec.Right.StreamID == "" {
		return compileErr("query %q: a stream-stream join requires a stream on both sides", q.ID)
	}
	if spec.Left.Window == nil || spec.Right.Window == nil {
		return compileErr("query %q: a stream-stream join requires a window on both sides", q.ID)
	}

	leftDef, ok := rt.definitions[spec.Left.StreamID]
	if !ok {
		return compileErr("query %q: unknown left stream %q", q.ID, spec.Left.StreamID)
	}
	rightDef, ok := rt.definitions[spec.Right.StreamID]
	if !ok {
		return compileErr("query %q: unknown right stream %q", q.ID, spec.Right.StreamID)
	}

	leftScope := newScope()
	leftScope.add("", leftDef.Attributes)
	rightScope := newScope()
	rightScope.add("", rightDef.Attributes)

	leftWin, err := buildWindowProcessor(ctx, spec.Left.Window, q.ID+".left", leftScope)
	if err != nil {
		return compileErrWrap(err, "query %q left window", q.ID)
	}
	rightWin, err := buildWindowProcessor(ctx, spec.Right.Window, q.ID+".right", rightScope)
	if err != nil {
		return compileErrWrap(err, "query %q right window", q.ID)
	}
	registerTimerSink(rt, spec.Left.Window.Type, leftWin)
	registerTimerSink(rt, spec.Right.Window.Type, rightWin)

	joinScope := newScope()
	joinScope.add("left", leftDef.Attributes)
	joinScope.add("right", rightDef.Attributes)

	condition, err := compileExpr(spec.Condition, joinScope, ctx.engine.functions)
	if err != nil {
		return compileErrWrap(err, "query %q join condition", q.ID)
	}

	coordinator := join.New(spec.Type, leftWin, rightWin, len(leftDef.Attributes), len(rightDef.Attributes), condition)

	leftProcs := make([]processor.Processor, 0, 3)
	if spec.Left.Filter != nil {
		exec, err := compileExpr(spec.Left.Filter, leftScope, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "query %q left filter", q.ID)
		}
		leftProcs = append(leftProcs, processor.NewFilter(exec))
	}
	leftProcs = append(leftProcs, leftWin, coordinator.Left())
	rt.junctions[spec.Left.StreamID].Subscribe(processor.Chain(leftProcs...))

	rightProcs := make([]processor.Processor, 0, 3)
	if spec.Right.Filter != nil {
		exec, err := compileExpr(spec.Right.Filter, rightScope, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "query %q right filter", q.ID)
		}
		rightProcs = append(rightProcs, processor.NewFilter(exec))
	}
	rightProcs = append(rightProcs, rightWin, coordinator.Right())
	rt.junctions[spec.Right.StreamID].Subscribe(processor.Chain(rightProcs...))

	tail := make([]processor.Processor, 0, 2)
	if q.Having != nil {
		exec, err := compileExpr(q.Having, joinScope, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "query %q having", q.ID)
		}
		tail = append(tail, processor.NewFilter(exec))
	}
	outAttrs, projection, err := buildProjection(q.Select, joinScope, ctx.engine.functions)
	if err != nil {
		return compileErrWrap(err, "query %q select", q.ID)
	}
	if projection != nil {
		tail = append(tail, projection)
	}

	outJunction := newOutputJunction(q.ID, q.Async, q.Capacity, outAttrs)
	rt.junctions[q.ID] = outJunction
	rt.definitions[q.ID] = &event.StreamDefinition{ID: q.ID, Attributes: outAttrs}
	tail = append(tail, newPublishTerminal(outJunction, rt.logFault(q.ID)))

	tailChain := processor.Chain(tail...)
	coordinator.SetNext(tailChain)

	return wireInsertInto(ctx, rt, q, outJunction)
}

func buildTableJoinQuery(ctx *appContext, rt *AppRuntime, q Query) error {
	spec := q.Join
	if spec.Left.StreamID == "" {
		return compileErr("query %q: a stream-to-table join requires Left.StreamID", q.ID)
	}
	leftDef, ok := rt.definitions[spec.Left.StreamID]
	if !ok {
		return compileErr("query %q: unknown left stream %q", q.ID, spec.Left.StreamID)
	}
	tbl, ok := rt.tables[spec.Right.TableID]
	if !ok {
		return compileErr("query %q: unknown right table %q", q.ID, spec.Right.TableID)
	}
	tableAttrs, ok := rt.tableAttrs[spec.Right.TableID]
	if !ok {
		return compileErr("query %q: table %q has no declared attributes (custom table)", q.ID, spec.Right.TableID)
	}

	leftScope := newScope()
	leftScope.add("", leftDef.Attributes)
	joinScope := newScope()
	joinScope.add("left", leftDef.Attributes)
	joinScope.add("right", tableAttrs)

	condition, err := compileExpr(spec.Condition, joinScope, ctx.engine.functions)
	if err != nil {
		return compileErrWrap(err, "query %q join condition", q.ID)
	}

	lookup := table.NewJoinLookup(tbl, rt.logFault(q.ID))
	tj := join.NewTableJoin(spec.Type, lookup, len(tableAttrs), condition)

	procs := make([]processor.Processor, 0, 4)
	if spec.Left.Filter != nil {
		exec, err := compileExpr(spec.Left.Filter, leftScope, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "query %q left filter", q.ID)
		}
		procs = append(procs, processor.NewFilter(exec))
	}
	procs = append(procs, tj)

	if q.Having != nil {
		exec, err := compileExpr(q.Having, joinScope, ctx.engine.functions)
		if err != nil {
			return compileErrWrap(err, "query %q having", q.ID)
		}
		procs = append(procs, processor.NewFilter(exec))
	}
	outAttrs, projection, err := buildProjection(q.Select, joinScope, ctx.engine.functions)
	if err != nil {
		return compileErrWrap(err, "query %q select", q.ID)
	}
	if projection != nil {
		procs = append(procs, projection)
	}

	outJunction := newOutputJunction(q.ID, q.Async, q.Capacity, outAttrs)
	rt.junctions[q.ID] = outJunction
	rt.definitions[q.ID] = &event.StreamDefinition{ID: q.ID, Attributes: outAttrs}
	procs = append(procs, newPublishTerminal(outJunction, rt.logFault(q.ID)))

	rt.junctions[spec.Left.StreamID].Subscribe(processor.Chain(procs...))
	return wireInsertInto(ctx, rt, q, outJunction)
}

func wireInsertInto(ctx *appContext, rt *AppRuntime, q Query, outJunction *junction.Junction) error {
	if q.InsertInto == nil {
		return nil
	}
	switch q.InsertInto.Kind {
	case "table":
		target, ok := rt.tables[q.InsertInto.ID]
		if !ok {
			return compileErr("query %q: insert into unknown table %q", q.ID, q.InsertInto.ID)
		}
		outJunction.Subscribe(table.NewInsertProcessor(target, rt.logFault(q.ID)))
	case "stream":
		target, ok := rt.junctions[q.InsertInto.ID]
		if !ok {
			return compileErr("query %q: insert into unknown stream %q", q.ID, q.InsertInto.ID)
		}
		outJunction.Subscribe(newPublishTerminal(target, rt.logFault(q.ID)))
	case "sink":
		factory, ok := ctx.engine.sinkFactory(q.InsertInto.ID)
		if !ok {
			return compileErr("query %q: no sink factory registered for %q", q.ID, q.InsertInto.ID)
		}
		sink, err := factory(q.InsertInto.Params)
		if err != nil {
			return compileErrWrap(err, "query %q sink %q", q.ID, q.InsertInto.ID)
		}
		rt.sinks = append(rt.sinks, sink)
		outJunction.Subscribe(sinkSubscriber{sink: sink, onError: rt.logFault(q.ID)})
	default:
		return compileErr("query %q: unknown insert-into kind %q", q.ID, q.InsertInto.Kind)
	}
	return nil
}

func buildProjection(sel []SelectExpr, sc *scope, funcs *expr.FunctionRegistry) ([]event.Attribute, *processor.Projection, error) {
	if len(sel) == 0 {
		return sc.attributes(), nil, nil
	}
	selectors := make([]expr.Executor, len(sel))
	attrs := make([]event.Attribute, len(sel))
	for i, s := range sel {
		exec, err := compileExpr(s.Value, sc, funcs)
		if err != nil {
			return nil, nil, compileErrWrap(err, "select %q", s.Alias)
		}
		selectors[i] = exec
		kind := event.KindObject
		if s.Value.Kind == ExprAttribute {
			if idx, ok := sc.resolve(s.Value.Stream, s.Value.Attribute); ok {
				if a, ok := sc.attrAt(idx); ok {
					kind = a.Kind
				}
			}
		}
		attrs[i] = event.Attribute{Name: s.Alias, Kind: kind}
	}
	return attrs, processor.NewProjection(selectors), nil
}

func buildWindowProcessor(ctx *appContext, spec *WindowSpec, name string, sc *scope) (WindowProcessor, error) {
	switch spec.Type {
	case "length":
		return window.NewLength(name, spec.Size), nil
	case "time":
		return window.NewTime(name, spec.Duration), nil
	case "timeBatch":
		return window.NewTimeBatch(name, spec.Duration), nil
	case "session":
		keyExec, err := compileExpr(spec.SessionKey, sc, ctx.engine.functions)
		if err != nil {
			return nil, err
		}
		return window.NewSession(name, keyExec, spec.Gap, spec.MaxDuration), nil
	case "sort":
		byExec, err := compileExpr(spec.SortBy, sc, ctx.engine.functions)
		if err != nil {
			return nil, err
		}
		return window.NewSort(name, spec.Size, byExec, spec.Order), nil
	default:
		factory, ok := ctx.engine.windowFactory(spec.Type)
		if !ok {
			return nil, compileErr("unknown window type %q", spec.Type)
		}
		return factory(name, nil)
	}
}

func registerTimerSink(rt *AppRuntime, windowType string, w WindowProcessor) {
	switch windowType {
	case "time", "timeBatch", "session":
		rt.clock.Register(w)
	}
}

func newOutputJunction(id string, async bool, capacity int, attrs []event.Attribute) *junction.Junction {
	mode := junction.Sync
	if async {
		mode = junction.Async
	}
	return junction.New(junction.Config{
		ID:         id,
		Definition: &event.StreamDefinition{ID: id, Attributes: attrs},
		Mode:       mode,
		Capacity:   capacity,
		OnError:    junction.Log,
	})
}

// logFault returns an error callback that logs a runtime fault against
// componentID without halting the enclosing query; plugged into every
// chain terminal that can fail (table insert, stream-to-table lookup,
// republish) per spec.md §7's "table backend errors don't stop the
// query" policy.
func (r *AppRuntime) logFault(componentID string) func(error) {
	return func(err error) {
		r.logger.Error().Str("component", componentID).Err(err).Msg("runtime fault")
	}
}

