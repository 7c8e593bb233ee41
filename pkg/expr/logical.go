package expr

import "github.com/corestream/corestream/pkg/event"

// And short-circuits: right is never evaluated once left is false.
func And(left, right Executor) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		if !Bool(left, ce) {
			return event.Bool(false)
		}
		return event.Bool(Bool(right, ce))
	}
}

// Or short-circuits: right is never evaluated once left is true.
func Or(left, right Executor) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		if Bool(left, ce) {
			return event.Bool(true)
		}
		return event.Bool(Bool(right, ce))
	}
}

// Not negates e's boolean value.
func Not(e Executor) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		return event.Bool(!Bool(e, ce))
	}
}
