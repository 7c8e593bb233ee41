package runtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/junction"
	"github.com/corestream/corestream/pkg/log"
	"github.com/corestream/corestream/pkg/metrics"
	"github.com/corestream/corestream/pkg/snapshot"
	"github.com/corestream/corestream/pkg/table"
	"github.com/corestream/corestream/pkg/window"
)

// State is an AppRuntime's lifecycle stage.
type State int

const (
	Created State = iota
	Started
	Stopped
)

// StreamCallback receives every Current/Expired node published onto a
// stream or query output junction that AddCallback attached it to.
type StreamCallback func(ce *event.ComplexEvent)

type callbackSubscriber struct{ cb StreamCallback }

func (s callbackSubscriber) Process(ce *event.ComplexEvent) {
	for n := ce; n != nil; n = n.Next {
		if n.EventType == event.Current || n.EventType == event.Expired {
			s.cb(n)
		}
	}
}

// aggregationRuntime holds one compiled AggregationDef's period chain and
// name-indexed periods for Query lookups.
type aggregationRuntime struct {
	head    *aggregation.Executor
	periods map[string]struct{}
}

// AppRuntime is one compiled, running application: its junctions,
// tables, aggregation chains, fault routing, and the snapshot registry
// covering every stateful component registered during compilation.
type AppRuntime struct {
	name string

	mu           sync.RWMutex
	junctions    map[string]*junction.Junction
	definitions  map[string]*event.StreamDefinition
	tables       map[string]table.Table
	tableAttrs   map[string][]event.Attribute
	aggregations map[string]*aggregationRuntime
	state        State

	clock    *window.Clock
	barrier  *snapshot.Barrier
	registry *snapshot.Registry
	store    snapshot.Store

	sources  []boundSource
	sinks    []Sink
	triggers []*triggerRuntime

	logger zerolog.Logger
}

// boundSource pairs a compiled Source with the publish closure compiled
// for the one stream it was attached to (StreamDef.SourceName), so
// AppRuntime.Start can hand each Source its own junction without a
// shared, stream-agnostic callback.
type boundSource struct {
	source  Source
	publish func(values []event.Value) error
}

// sinkSubscriber forwards a junction's Current/Expired output to a Sink,
// the output-side counterpart of a Source feeding a stream's input.
type sinkSubscriber struct {
	sink    Sink
	onError func(error)
}

func (s sinkSubscriber) Process(ce *event.ComplexEvent) {
	for n := ce; n != nil; n = n.Next {
		if n.EventType == event.Current || n.EventType == event.Expired {
			if err := s.sink.Write(n); err != nil && s.onError != nil {
				s.onError(err)
			}
		}
	}
}

func newAppRuntime(name string) *AppRuntime {
	return &AppRuntime{
		name:         name,
		junctions:    make(map[string]*junction.Junction),
		definitions:  make(map[string]*event.StreamDefinition),
		tables:       make(map[string]table.Table),
		tableAttrs:   make(map[string][]event.Attribute),
		aggregations: make(map[string]*aggregationRuntime),
		clock:        window.NewClock(defaultClockInterval),
		barrier:      snapshot.NewBarrier(),
		registry:     snapshot.NewRegistry(),
		logger:       log.WithApp(name),
	}
}

// Name returns the application's name.
func (r *AppRuntime) Name() string { return r.name }

// State returns the application's current lifecycle stage.
func (r *AppRuntime) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Start transitions Created → Started: starts every junction and the
// shared window clock, then launches every registered external source.
func (r *AppRuntime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != Created {
		r.mu.Unlock()
		return lifecycleErr("app %q is not in the Created state", r.name)
	}
	r.state = Started
	junctions := make([]*junction.Junction, 0, len(r.junctions))
	for _, j := range r.junctions {
		junctions = append(junctions, j)
	}
	sources := append([]boundSource(nil), r.sources...)
	triggers := append([]*triggerRuntime(nil), r.triggers...)
	r.mu.Unlock()

	for _, j := range junctions {
		j.Start()
	}
	r.clock.Start()
	metrics.AppsRunning.Inc()

	for _, bs := range sources {
		b := bs
		if err := b.source.Start(ctx, b.publish); err != nil {
			return runtimeErr("starting source: %w", err)
		}
	}
	for _, tr := range triggers {
		tr.start()
	}
	r.logger.Info().Msg("app runtime started")
	return nil
}

// Stop transitions Started → Stopped: stops every external source and
// trigger, the clock, every junction, then closes every external sink.
func (r *AppRuntime) Stop() error {
	r.mu.Lock()
	if r.state != Started {
		r.mu.Unlock()
		return lifecycleErr("app %q is not in the Started state", r.name)
	}
	r.state = Stopped
	junctions := make([]*junction.Junction, 0, len(r.junctions))
	for _, j := range r.junctions {
		junctions = append(junctions, j)
	}
	sources := append([]boundSource(nil), r.sources...)
	triggers := append([]*triggerRuntime(nil), r.triggers...)
	sinks := append([]Sink(nil), r.sinks...)
	r.mu.Unlock()

	for _, bs := range sources {
		_ = bs.source.Stop()
	}
	for _, tr := range triggers {
		tr.stop()
	}
	r.clock.Stop()
	for _, j := range junctions {
		j.Stop()
	}
	for _, sk := range sinks {
		_ = sk.Close()
	}
	metrics.AppsRunning.Dec()
	r.logger.Info().Msg("app runtime stopped")
	return nil
}

// InputHandler is the handle a caller sends events through for one
// stream.
type InputHandler struct {
	streamID string
	def      *event.StreamDefinition
	junction *junction.Junction
	barrier  *snapshot.Barrier
}

// Definition returns the input stream's attribute shape.
func (h InputHandler) Definition() *event.StreamDefinition { return h.def }

// Send publishes one event carrying values (ordered per Definition's
// attributes) onto the stream, guarded by the app's snapshot barrier so
// a concurrent Persist/Restore can't observe a partially delivered
// publish.
func (h InputHandler) Send(ctx context.Context, values []event.Value) (SendResult, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.AppProcessingDuration, h.streamID)

	if err := publishCurrent(ctx, h.junction, h.barrier, values); err != nil {
		if ctx.Err() != nil {
			return Timeout, err
		}
		return Full, err
	}
	return Ok, nil
}

// publishCurrent builds a fresh Current event from values and publishes
// it onto j, guarded by barrier so a concurrent Persist/Restore can't
// observe a partial delivery. Shared by InputHandler.Send, every
// compiled Source's bound publish closure, and every triggerRuntime.
func publishCurrent(ctx context.Context, j *junction.Junction, barrier *snapshot.Barrier, values []event.Value) error {
	e := &event.Event{ID: globalSeq.next(), Timestamp: nowNanos(), Data: values}
	ce := event.NewCurrent(e)

	var sendErr error
	barrier.Guard(func() {
		sendErr = j.Publish(ctx, ce)
	})
	return sendErr
}

// InputHandler returns the send handle for streamID, or an error if it
// isn't defined on this app.
func (r *AppRuntime) InputHandler(streamID string) (InputHandler, error) {
	r.mu.RLock()
	j, ok := r.junctions[streamID]
	def := r.definitions[streamID]
	r.mu.RUnlock()
	if !ok || def == nil {
		return InputHandler{}, runtimeErr("unknown input stream %q", streamID)
	}
	return InputHandler{streamID: streamID, def: def, junction: j, barrier: r.barrier}, nil
}

// AddCallback subscribes cb to junctionID's output — a stream id, or a
// query id for that query's projected output.
func (r *AppRuntime) AddCallback(junctionID string, cb StreamCallback) error {
	r.mu.RLock()
	j, ok := r.junctions[junctionID]
	r.mu.RUnlock()
	if !ok {
		return runtimeErr("unknown stream or query %q", junctionID)
	}
	j.Subscribe(callbackSubscriber{cb: cb})
	return nil
}

// Table returns the table registered under id.
func (r *AppRuntime) Table(id string) (table.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// Query answers a within-range historical query against aggregationID's
// named period, e.g. Query("txByCard", "minutes", from, to).
func (r *AppRuntime) Query(aggregationID, period string, from, to int64) ([][]event.Value, error) {
	r.mu.RLock()
	agg, ok := r.aggregations[aggregationID]
	r.mu.RUnlock()
	if !ok {
		return nil, runtimeErr("unknown aggregation %q", aggregationID)
	}
	if _, ok := agg.periods[period]; !ok {
		return nil, runtimeErr("aggregation %q has no period %q", aggregationID, period)
	}
	return aggregation.QueryByPeriod(agg.head, period, aggregation.TimeRange{From: from, To: to})
}

// Persist freezes the app's thread barrier and snapshots every
// registered stateful component, returning the new revision id.
func (r *AppRuntime) Persist() (string, error) {
	rev, err := r.registry.Persist(r.barrier, r.persistenceStore(), r.name)
	if err != nil {
		return "", &StateError{Msg: "persist", Cause: err}
	}
	return rev, nil
}

// RestoreRevision freezes the barrier and restores every registered
// component from revisionID.
func (r *AppRuntime) RestoreRevision(revisionID string) error {
	if err := r.registry.Restore(r.barrier, r.persistenceStore(), r.name, revisionID); err != nil {
		return &StateError{Msg: "restore", Cause: err}
	}
	return nil
}

func (r *AppRuntime) persistenceStore() snapshot.Store {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store
}
