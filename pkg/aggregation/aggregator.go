// Package aggregation implements the engine's incremental aggregation:
// a chain of per-period executors (smallest bucket first) that keep a
// running value per group, flushing to a backing store and feeding the
// next-larger period on bucket close.
package aggregation

import "github.com/corestream/corestream/pkg/event"

// Aggregator is one running computation (sum, count, avg, ...) over a
// bucket's values for one group. Current/Expired mirror the ComplexEvent
// types a window forwards; Reset reinitializes intra-bucket state at a
// bucket boundary.
type Aggregator interface {
	Current(v event.Value)
	Expired(v event.Value)
	Reset()
	Value() event.Value
	Clone() Aggregator
}

type sumAgg struct{ total float64 }

// NewSum builds a sum aggregator.
func NewSum() Aggregator { return &sumAgg{} }

func (a *sumAgg) Current(v event.Value) {
	if f, ok := v.AsFloat64(); ok {
		a.total += f
	}
}
func (a *sumAgg) Expired(v event.Value) {
	if f, ok := v.AsFloat64(); ok {
		a.total -= f
	}
}
func (a *sumAgg) Reset()             { a.total = 0 }
func (a *sumAgg) Value() event.Value { return event.Double(a.total) }
func (a *sumAgg) Clone() Aggregator  { return &sumAgg{} }

type countAgg struct{ n int64 }

// NewCount builds a count aggregator.
func NewCount() Aggregator { return &countAgg{} }

func (a *countAgg) Current(event.Value) { a.n++ }
func (a *countAgg) Expired(event.Value) {
	if a.n > 0 {
		a.n--
	}
}
func (a *countAgg) Reset()             { a.n = 0 }
func (a *countAgg) Value() event.Value { return event.Long(a.n) }
func (a *countAgg) Clone() Aggregator  { return &countAgg{} }

type avgAgg struct {
	sum float64
	n   int64
}

// NewAvg builds an average aggregator; Value is Null over an empty bucket.
func NewAvg() Aggregator { return &avgAgg{} }

func (a *avgAgg) Current(v event.Value) {
	if f, ok := v.AsFloat64(); ok {
		a.sum += f
		a.n++
	}
}
func (a *avgAgg) Expired(v event.Value) {
	if f, ok := v.AsFloat64(); ok {
		a.sum -= f
		if a.n > 0 {
			a.n--
		}
	}
}
func (a *avgAgg) Reset() { a.sum, a.n = 0, 0 }
func (a *avgAgg) Value() event.Value {
	if a.n == 0 {
		return event.Null()
	}
	return event.Double(a.sum / float64(a.n))
}
func (a *avgAgg) Clone() Aggregator { return &avgAgg{} }

// NewDistinctCount builds a distinctCount aggregator, maintaining a
// multiplicity map: increment on Current, decrement on Expired, counting
// keys whose multiplicity is still positive.
func NewDistinctCount() Aggregator {
	return &distinctCountAgg{mult: make(map[any]int)}
}

type distinctCountAgg struct{ mult map[any]int }

func (a *distinctCountAgg) Current(v event.Value) { a.mult[v.HashKey()]++ }
func (a *distinctCountAgg) Expired(v event.Value) {
	k := v.HashKey()
	if a.mult[k] > 0 {
		a.mult[k]--
		if a.mult[k] == 0 {
			delete(a.mult, k)
		}
	}
}
func (a *distinctCountAgg) Reset() { a.mult = make(map[any]int) }
func (a *distinctCountAgg) Value() event.Value {
	n := 0
	for _, count := range a.mult {
		if count > 0 {
			n++
		}
	}
	return event.Long(int64(n))
}
func (a *distinctCountAgg) Clone() Aggregator { return NewDistinctCount() }
