package expr

import "github.com/corestream/corestream/pkg/event"

// ArithOp is a binary numeric operator.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

// Arithmetic compiles a binary numeric operation over left and right,
// widening both operands to float64 (per event.Value.AsFloat64) and
// producing a Double result; a non-numeric operand yields Null the same
// way a SQL arithmetic expression over a null column yields null.
func Arithmetic(op ArithOp, left, right Executor) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		lv, lok := left(ce).AsFloat64()
		rv, rok := right(ce).AsFloat64()
		if !lok || !rok {
			return event.Null()
		}
		switch op {
		case Add:
			return event.Double(lv + rv)
		case Sub:
			return event.Double(lv - rv)
		case Mul:
			return event.Double(lv * rv)
		case Div:
			if rv == 0 {
				return event.Null()
			}
			return event.Double(lv / rv)
		case Mod:
			if rv == 0 {
				return event.Null()
			}
			return event.Double(float64(int64(lv) % int64(rv)))
		default:
			return event.Null()
		}
	}
}
