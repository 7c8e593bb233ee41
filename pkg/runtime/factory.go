package runtime

import (
	"context"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/processor"
	"github.com/corestream/corestream/pkg/snapshot"
	"github.com/corestream/corestream/pkg/table"
)

// WindowProcessor is any processor a query can retain events in and scan
// for join candidates — every pkg/window type satisfies this directly.
type WindowProcessor interface {
	processor.Processor
	Snapshot() []*event.ComplexEvent
}

// WindowFactory builds a custom window kind from its param map, for a
// WindowSpec.Type the compiler's built-ins (length/time/timeBatch/
// session/sort) don't cover.
type WindowFactory func(name string, params map[string]any) (WindowProcessor, error)

// AggregatorFactory builds a custom named aggregator (beyond sum/count/
// avg/min/max/distinctCount) for use in an AggregationDef's Select.
type AggregatorFactory func(params map[string]any) (aggregation.Aggregator, error)

// TableFactory builds a CustomTable-kind table.
type TableFactory func(name string, params map[string]any) (table.Table, error)

// Source is a running external input that pushes events into a stream's
// junction, e.g. a polling HTTP client or a message-broker consumer.
type Source interface {
	Start(ctx context.Context, publish func(values []event.Value) error) error
	Stop() error
}

// SourceFactory builds a named Source from its param map.
type SourceFactory func(params map[string]any) (Source, error)

// Sink receives a query's output rows for delivery to an external
// system, the counterpart of Source on the output side.
type Sink interface {
	Write(ce *event.ComplexEvent) error
	Close() error
}

// SinkFactory builds a named Sink from its param map.
type SinkFactory func(params map[string]any) (Sink, error)

// StoreFactory builds a custom snapshot.Store, for a persistence backend
// beyond snapshot.MemoryStore.
type StoreFactory func(params map[string]any) (snapshot.Store, error)
