package aggregation

import (
	"sort"

	"github.com/corestream/corestream/pkg/event"
)

// minMaxAgg keeps a sorted multiset of the current bucket's values so an
// Expired event can retract exactly one occurrence without rescanning
// every retained value. The forever variants (minForever/maxForever)
// ignore both Expired and Reset, tracking the extreme value seen across
// the aggregator's whole lifetime instead of one bucket.
type minMaxAgg struct {
	isMin   bool
	forever bool
	values  []float64 // sorted ascending, only used when !forever

	foreverValue float64
	foreverSet   bool
}

// NewMin builds a per-bucket min aggregator.
func NewMin() Aggregator { return &minMaxAgg{isMin: true} }

// NewMax builds a per-bucket max aggregator.
func NewMax() Aggregator { return &minMaxAgg{isMin: false} }

// NewMinForever builds a min aggregator that never resets or retracts.
func NewMinForever() Aggregator { return &minMaxAgg{isMin: true, forever: true} }

// NewMaxForever builds a max aggregator that never resets or retracts.
func NewMaxForever() Aggregator { return &minMaxAgg{isMin: false, forever: true} }

func (a *minMaxAgg) Current(v event.Value) {
	f, ok := v.AsFloat64()
	if !ok {
		return
	}
	if a.forever {
		if !a.foreverSet || (a.isMin && f < a.foreverValue) || (!a.isMin && f > a.foreverValue) {
			a.foreverValue, a.foreverSet = f, true
		}
		return
	}
	i := sort.SearchFloat64s(a.values, f)
	a.values = append(a.values, 0)
	copy(a.values[i+1:], a.values[i:])
	a.values[i] = f
}

func (a *minMaxAgg) Expired(v event.Value) {
	if a.forever {
		return
	}
	f, ok := v.AsFloat64()
	if !ok {
		return
	}
	i := sort.SearchFloat64s(a.values, f)
	if i < len(a.values) && a.values[i] == f {
		a.values = append(a.values[:i], a.values[i+1:]...)
	}
}

func (a *minMaxAgg) Reset() {
	if a.forever {
		return
	}
	a.values = nil
}

func (a *minMaxAgg) Value() event.Value {
	if a.forever {
		if !a.foreverSet {
			return event.Null()
		}
		return event.Double(a.foreverValue)
	}
	if len(a.values) == 0 {
		return event.Null()
	}
	if a.isMin {
		return event.Double(a.values[0])
	}
	return event.Double(a.values[len(a.values)-1])
}

func (a *minMaxAgg) Clone() Aggregator {
	return &minMaxAgg{isMin: a.isMin, forever: a.forever}
}
