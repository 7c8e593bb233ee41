// Package runtime compiles an AppDefinition AST into a running
// AppRuntime — wiring junctions, tables, windows, joins, aggregations,
// and partitions into the linked processor chains the rest of the engine
// executes — and exposes the Manager that owns every running app.
package runtime

import (
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/join"
	"github.com/corestream/corestream/pkg/window"
)

// Annotation is a `@name(key=value, ...)` decoration on a definition or
// query, carried through compilation but only interpreted where a
// specific annotation name is documented (none are required; unknown
// annotations are ignored).
type Annotation struct {
	Name     string
	Elements map[string]string
}

// StreamDef declares one named, typed event stream and its junction
// realisation.
type StreamDef struct {
	ID            string
	Attributes    []event.Attribute
	Async         bool
	Capacity      int
	Consumers     int
	OnError       string // "log" (default), "stream", "store", "drop"
	FaultStreamID string // required when OnError == "stream"

	// SourceName optionally attaches an external Source to this stream:
	// resolved first against a Source registered by name on the
	// EngineContext (Manager.AddDataSource), then against a
	// SourceFactory (Manager.AddSourceFactory) built with SourceParams.
	// The source is started with the app and feeds every published
	// value onto this stream's junction.
	SourceName   string
	SourceParams map[string]any
}

// TableKind selects a table definition's backing implementation.
type TableKind int

const (
	MemoryTable TableKind = iota
	CacheTable
	BoltTable
	CustomTable
)

// TableDef declares one named table.
type TableDef struct {
	ID         string
	Attributes []event.Attribute
	Kind       TableKind
	CacheSize  int    // CacheTable only
	BoltPath   string // BoltTable only; one bbolt file per table
	FactoryName string // CustomTable only, looked up on the EngineContext
	Params      map[string]any
}

// ExprKind tags the node shape of an Expr.
type ExprKind int

const (
	ExprConstant ExprKind = iota
	ExprAttribute
	ExprArithmetic
	ExprComparison
	ExprAnd
	ExprOr
	ExprNot
	ExprCall
)

// Expr is the AST's expression tree, compiled against a query's attribute
// scope into an expr.Executor at CreateAppRuntime time.
type Expr struct {
	Kind ExprKind

	Const event.Value

	// Stream, for ExprAttribute, names which join side/source the
	// attribute belongs to ("left"/"right", or "" for a single-input
	// query's only source).
	Stream    string
	Attribute string

	ArithOp   expr.ArithOp
	CompareOp expr.CompareOp

	Left, Right *Expr
	Operand     *Expr

	Func string
	Args []*Expr
}

// Attr builds an attribute reference, omitting Stream for a single-input
// scope.
func Attr(name string) *Expr { return &Expr{Kind: ExprAttribute, Attribute: name} }

// AttrOn builds a join-side-qualified attribute reference.
func AttrOn(stream, name string) *Expr {
	return &Expr{Kind: ExprAttribute, Stream: stream, Attribute: name}
}

// Const builds a constant expression.
func Const(v event.Value) *Expr { return &Expr{Kind: ExprConstant, Const: v} }

// WindowSpec configures one of the engine's five window kinds.
type WindowSpec struct {
	Type string // "length", "time", "timeBatch", "session", "sort"

	Size int // length, sort

	Duration    time.Duration // time, timeBatch
	Gap         time.Duration // session
	MaxDuration time.Duration // session, 0 = unbounded

	SessionKey *Expr // session

	SortBy *Expr       // sort
	Order  window.Order // sort
}

// QuerySource is one input to a query: either a stream (optionally
// windowed) or a table, with an optional pre-window filter.
type QuerySource struct {
	StreamID string
	TableID  string
	Window   *WindowSpec
	Filter   *Expr
}

// JoinSpec configures a two-sided query as a join instead of a plain
// single-input pipeline.
type JoinSpec struct {
	Type      join.Type
	Left      QuerySource
	Right     QuerySource
	Condition *Expr
}

// SelectExpr is one projected output column. A plain query's Select only
// ever sets Value. An AggregationDef's Select instead sets Func to an
// aggregate function name (sum/count/avg/min/max/distinctCount/
// minForever/maxForever) evaluated over Args[0].
type SelectExpr struct {
	Alias string
	Value *Expr

	Func string
	Args []*Expr
}

// OutputTarget names where a query's projected output is additionally
// routed, besides its own output junction.
type OutputTarget struct {
	Kind string // "table", "stream", or "sink"
	ID   string

	// Params configures the Sink a "sink"-kind target resolves via
	// SinkFactory; unused by "table"/"stream".
	Params map[string]any
}

// Query is one compiled continuous query. Exactly one of From or Join is
// set. Its projected result is always published onto an output junction
// named ID, which InsertInto, AddCallback, and any other query's From/
// Join referencing ID as a source all subscribe to.
type Query struct {
	ID          string
	Annotations []Annotation

	From *QuerySource
	Join *JoinSpec

	// Having filters the merged/windowed event before projection; nil
	// means no post-join/post-window filter.
	Having *Expr

	// Select projects the merged event into the query's output shape;
	// nil/empty forwards the merged event's attributes unchanged.
	Select []SelectExpr

	InsertInto *OutputTarget

	Async    bool
	Capacity int
}

// PeriodSpec is one granularity in an aggregation's period chain.
type PeriodSpec struct {
	Name     string
	Duration time.Duration
}

// AggregationDef declares one named incremental aggregation (spec.md
// §4.H): a period chain fed by one input stream, grouped and aggregated
// incrementally and flushed to one backing table per period.
type AggregationDef struct {
	ID     string
	Input  string
	Filter *Expr

	GroupBy []*Expr
	Select  []SelectExpr // Func set to an aggregate name; Value set for a plain group-by passthrough column

	Periods []PeriodSpec

	// StoreTableIDs optionally names an existing TableDef per period
	// (parallel to Periods) to use as that period's backing store;
	// unset/short entries get a fresh InMemoryTable named
	// "<ID>.<period>".
	StoreTableIDs []string
}

// TriggerDef declares one named time-driven pseudo-stream: it carries no
// external input, instead publishing a single triggeredTime (long, epoch
// nanoseconds) attribute on its own schedule — spec.md §5's single
// scheduler thread, applied to a user-visible stream a query can read
// From like any other.
type TriggerDef struct {
	ID string

	// At selects the schedule: "start" or "" fires exactly once when the
	// app starts; any other value is parsed with time.ParseDuration and
	// fires repeatedly on that interval.
	At string
}

// Partition declares a PARTITION BY group: Input's events are routed by
// By's value into an independent clone of each inner query's chain per
// key, the way pkg/processor.Partitioner isolates window/aggregator
// state across keys.
type Partition struct {
	ID      string
	Input   string
	By      *Expr
	Queries []Query
}

// AppDefinition is the full compile-time description of one application,
// the input to Manager.CreateAppRuntime.
type AppDefinition struct {
	Name        string
	Annotations []Annotation

	StreamDefs      []StreamDef
	TableDefs       []TableDef
	AggregationDefs []AggregationDef
	TriggerDefs     []TriggerDef
	Queries         []Query
	Partitions      []Partition
}
