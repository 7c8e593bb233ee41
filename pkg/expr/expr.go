// Package expr compiles the small expression language used by filter
// conditions, projections, join on-conditions, and group-by keys into
// plain Go closures evaluated once per complex event.
package expr

import "github.com/corestream/corestream/pkg/event"

// Executor evaluates one compiled expression node against a complex
// event, returning the value it produces. A query compiles its AST into
// a tree of Executors once; evaluating it is just a function call.
type Executor func(ce *event.ComplexEvent) event.Value

// Constant always returns v, regardless of input.
func Constant(v event.Value) Executor {
	return func(ce *event.ComplexEvent) event.Value { return v }
}

// AttributeRef reads the value at position idx in ce.OutputData, the
// attribute layout a query's compile-time MetaStreamEvent assigned.
func AttributeRef(idx int) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		if ce == nil || idx < 0 || idx >= len(ce.OutputData) {
			return event.Null()
		}
		return ce.OutputData[idx]
	}
}

// BeforeWindowRef reads from ce.BeforeWindowData, used by processors that
// run ahead of a window (e.g. a filter attached before the window in the
// chain needs the pre-window projection).
func BeforeWindowRef(idx int) Executor {
	return func(ce *event.ComplexEvent) event.Value {
		if ce == nil || idx < 0 || idx >= len(ce.BeforeWindowData) {
			return event.Null()
		}
		return ce.BeforeWindowData[idx]
	}
}

// Bool evaluates e and reports its boolean value; a non-bool or null
// result is treated as false, the way a filter condition silently drops
// an event whose predicate produced something other than a clean true.
func Bool(e Executor, ce *event.ComplexEvent) bool {
	v := e(ce)
	if v.IsNull() || v.Kind != event.KindBool {
		return false
	}
	return v.Bool()
}
