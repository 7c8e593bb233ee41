package aggregation

import (
	"fmt"
	"strings"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/metrics"
)

// Period is one granularity in an aggregation's period chain, e.g.
// {Name: "seconds", BucketNanos: int64(time.Second)}.
type Period struct {
	Name        string
	BucketNanos int64
}

// SlotSpec binds one aggregator to the expression whose value feeds it,
// e.g. {Name: "total", Value: expr.AttributeRef(2), New: aggregation.NewSum}.
type SlotSpec struct {
	Name  string
	Value expr.Executor
	New   func() Aggregator
}

// TimeRange is a half-open bucket_start filter: [From, To).
type TimeRange struct {
	From int64
	To   int64
}

// BucketSink receives one flushed bucket row per group per bucket close.
// A row is laid out [bucket_start, group-by values..., aggregator
// values...]; pkg/table.Table satisfies this with its Insert method.
type BucketSink interface {
	Insert(row []event.Value) error
}

// Queryable additionally answers within-range historical queries; a
// BucketSink that doesn't implement it can still receive flushes but
// can't be queried back.
type Queryable interface {
	BucketSink
	Query(within TimeRange) ([][]event.Value, error)
}

type groupEntry struct {
	keyValues []event.Value
	aggs      []Aggregator
}

// Executor is one period's incremental aggregation state: a base store
// keyed by group, a bucket clock, and an optional link to the
// next-larger period's Executor.
type Executor struct {
	queryID     string
	period      Period
	groupBy     []expr.Executor
	slots       []SlotSpec
	sink        BucketSink
	next        *Executor
	bucketStart int64
	store       map[string]*groupEntry
}

// NewChain builds a period chain from smallest to largest. groupBy and
// slots compile against the raw input event and apply only to the
// smallest (first) period; every larger period instead aggregates over
// the previous period's flushed rollup, whose layout is always
// [group-by values..., aggregate values...], so its own group-by and
// slot-value expressions are generated as plain AttributeRefs into that
// layout rather than reusing the raw-event expressions. This means a
// rollup-of-rollup is exact for sum/count/min/max/distinctCount but not
// for avg, the same caveat hierarchical rollups have in general — an
// avg-of-avgs isn't the true average unless every bucket held an equal
// count of samples.
func NewChain(queryID string, periods []Period, groupBy []expr.Executor, slots []SlotSpec, sinks []BucketSink) *Executor {
	if len(periods) == 0 {
		return nil
	}
	execs := make([]*Executor, len(periods))
	for i, p := range periods {
		var sink BucketSink
		if i < len(sinks) {
			sink = sinks[i]
		}
		gb, sl := groupBy, slots
		if i > 0 {
			gb, sl = rollupGroupAndSlots(len(groupBy), slots)
		}
		execs[i] = &Executor{
			queryID:     queryID,
			period:      p,
			groupBy:     gb,
			slots:       sl,
			sink:        sink,
			bucketStart: -1,
			store:       make(map[string]*groupEntry),
		}
	}
	for i := 0; i < len(execs)-1; i++ {
		execs[i].next = execs[i+1]
	}
	return execs[0]
}

func rollupGroupAndSlots(groupCount int, slots []SlotSpec) ([]expr.Executor, []SlotSpec) {
	gb := make([]expr.Executor, groupCount)
	for i := range gb {
		gb[i] = expr.AttributeRef(i)
	}
	sl := make([]SlotSpec, len(slots))
	for i, s := range slots {
		sl[i] = SlotSpec{Name: s.Name, Value: expr.AttributeRef(groupCount + i), New: s.New}
	}
	return gb, sl
}

// Process feeds one complex event into the smallest-period executor. A
// Reset event reinitializes every group's aggregator state without
// touching the bucket clock; Current/Expired accumulate or retract.
func (e *Executor) Process(ce *event.ComplexEvent) {
	switch ce.EventType {
	case event.Reset:
		e.resetAll()
		return
	case event.Current, event.Expired:
	default:
		return
	}

	if e.bucketStart == -1 {
		e.bucketStart = ce.Timestamp - ce.Timestamp%e.period.BucketNanos
	}
	for ce.Timestamp >= e.bucketStart+e.period.BucketNanos {
		e.flush()
		e.resetAll()
		e.bucketStart += e.period.BucketNanos
	}

	key, keyValues := e.groupKey(ce)
	entry, ok := e.store[key]
	if !ok {
		entry = &groupEntry{keyValues: keyValues, aggs: make([]Aggregator, len(e.slots))}
		for i, s := range e.slots {
			entry.aggs[i] = s.New()
		}
		e.store[key] = entry
	}
	for i, s := range e.slots {
		v := s.Value(ce)
		if ce.EventType == event.Expired {
			entry.aggs[i].Expired(v)
		} else {
			entry.aggs[i].Current(v)
		}
	}
}

func (e *Executor) groupKey(ce *event.ComplexEvent) (string, []event.Value) {
	if len(e.groupBy) == 0 {
		return "", nil
	}
	parts := make([]string, len(e.groupBy))
	values := make([]event.Value, len(e.groupBy))
	for i, g := range e.groupBy {
		v := g(ce)
		values[i] = v
		parts[i] = fmt.Sprintf("%v", v.Raw())
	}
	return strings.Join(parts, "\x1f"), values
}

// flush writes one row per group — [bucket_start, group-by values...,
// aggregate values...] — to the backing sink, and, if a next-larger
// executor is chained, feeds it a synthetic Current event whose
// OutputData is just [group-by values..., aggregate values...] (no
// bucket_start; the synthetic event's own Timestamp carries that).
func (e *Executor) flush() {
	if len(e.store) > 0 {
		metrics.AggregationFlushesTotal.WithLabelValues(e.queryID, e.period.Name).Inc()
	}
	for _, entry := range e.store {
		aggValues := make([]event.Value, len(e.slots))
		for i, a := range entry.aggs {
			aggValues[i] = a.Value()
		}

		if e.sink != nil {
			row := make([]event.Value, 0, 1+len(entry.keyValues)+len(aggValues))
			row = append(row, event.Long(e.bucketStart))
			row = append(row, entry.keyValues...)
			row = append(row, aggValues...)
			_ = e.sink.Insert(row)
		}
		if e.next != nil {
			synthetic := make([]event.Value, 0, len(entry.keyValues)+len(aggValues))
			synthetic = append(synthetic, entry.keyValues...)
			synthetic = append(synthetic, aggValues...)
			e.next.Process(&event.ComplexEvent{Timestamp: e.bucketStart, EventType: event.Current, OutputData: synthetic})
		}
	}
}

func (e *Executor) resetAll() {
	for _, entry := range e.store {
		for _, a := range entry.aggs {
			a.Reset()
		}
	}
}

// Query returns this executor's persisted rows whose bucket_start falls
// in [within.From, within.To), hard-filtering even if the sink's own
// Query already scoped the range.
func (e *Executor) Query(within TimeRange) ([][]event.Value, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.AggregationQueryDuration, e.queryID)

	if e.sink == nil {
		return nil, nil
	}
	q, ok := e.sink.(Queryable)
	if !ok {
		return nil, fmt.Errorf("aggregation: period %q's backing store is not queryable", e.period.Name)
	}
	rows, err := q.Query(within)
	if err != nil {
		return nil, err
	}
	filtered := make([][]event.Value, 0, len(rows))
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		ts := r[0].Long()
		if ts >= within.From && ts < within.To {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// QueryByPeriod walks the chain from head looking for the executor whose
// period matches name, then queries it.
func QueryByPeriod(head *Executor, name string, within TimeRange) ([][]event.Value, error) {
	for e := head; e != nil; e = e.next {
		if e.period.Name == name {
			return e.Query(within)
		}
	}
	return nil, fmt.Errorf("aggregation: unknown period %q", name)
}
