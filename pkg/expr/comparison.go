package expr

import "github.com/corestream/corestream/pkg/event"

// CompareOp is a binary comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	NotEq
	Lt
	Lte
	Gt
	Gte
)

// Comparison compiles a comparison between left and right. Equality
// follows event.CompareEqual's three-valued SQL semantics (null compares
// unequal to everything, including another null); ordering comparisons
// widen both sides numerically and are false whenever either side isn't
// numeric, which subsumes the null case.
func Comparison(op CompareOp, left, right Executor) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		lv, rv := left(ce), right(ce)

		switch op {
		case Eq:
			return event.Bool(event.CompareEqual(lv, rv))
		case NotEq:
			return event.Bool(!event.CompareEqual(lv, rv))
		}

		lf, lok := lv.AsFloat64()
		rf, rok := rv.AsFloat64()
		if !lok || !rok {
			return event.Bool(false)
		}
		switch op {
		case Lt:
			return event.Bool(lf < rf)
		case Lte:
			return event.Bool(lf <= rf)
		case Gt:
			return event.Bool(lf > rf)
		case Gte:
			return event.Bool(lf >= rf)
		default:
			return event.Bool(false)
		}
	}
}
