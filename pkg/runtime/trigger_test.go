package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corestream/corestream/pkg/event"
)

func TestManagerCreateAppRuntimeTrigger(t *testing.T) {
	def := &AppDefinition{
		Name:        "triggerApp",
		TriggerDefs: []TriggerDef{{ID: "everyTick", At: "20ms"}},
		Queries: []Query{
			{
				ID:   "ticks",
				From: &QuerySource{StreamID: "everyTick"},
			},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	var fired int64
	require.NoError(t, rt.AddCallback("ticks", func(ce *event.ComplexEvent) {
		atomic.AddInt64(&fired, 1)
	}))

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&fired) >= 2 })
}

func TestManagerCreateAppRuntimeTriggerStartOnce(t *testing.T) {
	def := &AppDefinition{
		Name:        "triggerOnceApp",
		TriggerDefs: []TriggerDef{{ID: "onStart", At: "start"}},
		Queries: []Query{
			{ID: "fired", From: &QuerySource{StreamID: "onStart"}},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	var fired int64
	require.NoError(t, rt.AddCallback("fired", func(ce *event.ComplexEvent) {
		atomic.AddInt64(&fired, 1)
	}))

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&fired) == 1 })
	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt64(&fired), "a start trigger must fire exactly once")
}

// fakeSource is a Source that publishes a single fixed event as soon as
// it's started, recording whether Stop was called.
type fakeSource struct {
	values  []event.Value
	stopped chan struct{}
}

func newFakeSource(values []event.Value) *fakeSource {
	return &fakeSource{values: values, stopped: make(chan struct{})}
}

func (s *fakeSource) Start(ctx context.Context, publish func(values []event.Value) error) error {
	go func() { _ = publish(s.values) }()
	return nil
}

func (s *fakeSource) Stop() error {
	close(s.stopped)
	return nil
}

// fakeSink records every event it's given.
type fakeSink struct {
	mu     sync.Mutex
	rows   [][]event.Value
	closed bool
}

func (s *fakeSink) Write(ce *event.ComplexEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ce.OutputData)
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func TestManagerCreateAppRuntimeSourceAndSink(t *testing.T) {
	src := newFakeSource([]event.Value{event.String("AAPL"), event.Double(150)})
	sink := &fakeSink{}

	mgr := New()
	mgr.AddDataSource("feed", src)
	mgr.AddSinkFactory("recorder", func(params map[string]any) (Sink, error) {
		return sink, nil
	})

	streamDef := simpleStreamDef("trades")
	streamDef.SourceName = "feed"

	def := &AppDefinition{
		Name:       "sourceSinkApp",
		StreamDefs: []StreamDef{streamDef},
		Queries: []Query{
			{
				ID:         "passthrough",
				From:       &QuerySource{StreamID: "trades"},
				InsertInto: &OutputTarget{Kind: "sink", ID: "recorder"},
			},
		},
	}

	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))

	waitFor(t, time.Second, func() bool { return sink.count() == 1 })

	require.NoError(t, rt.Stop())
	waitFor(t, time.Second, func() bool {
		select {
		case <-src.stopped:
			return true
		default:
			return false
		}
	})
	require.True(t, sink.closed)
}

func TestManagerCreateAppRuntimeUnknownSource(t *testing.T) {
	streamDef := simpleStreamDef("trades")
	streamDef.SourceName = "missing"

	def := &AppDefinition{
		Name:       "missingSourceApp",
		StreamDefs: []StreamDef{streamDef},
	}

	mgr := New()
	_, err := mgr.CreateAppRuntime(def)
	require.Error(t, err)
}
