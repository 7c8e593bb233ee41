package expr

import (
	"fmt"
	"sync"

	"github.com/corestream/corestream/pkg/event"
)

// ScalarFunction is a registered named function callable from an
// expression, e.g. `upper(name)` or `coalesce(a, b)`.
type ScalarFunction func(args []event.Value) event.Value

// FunctionRegistry holds the scalar functions available to expressions
// compiled for one application. The app runtime seeds it with built-ins
// and whatever a user registers via its factory surface.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]ScalarFunction
}

// NewFunctionRegistry builds a registry preloaded with the engine's
// built-in scalar functions.
func NewFunctionRegistry() *FunctionRegistry {
	r := &FunctionRegistry{funcs: make(map[string]ScalarFunction)}
	r.Register("coalesce", builtinCoalesce)
	r.Register("length", builtinLength)
	return r
}

// Register adds or replaces a named scalar function.
func (r *FunctionRegistry) Register(name string, fn ScalarFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the named function, or an error if it isn't registered.
func (r *FunctionRegistry) Lookup(name string) (ScalarFunction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("expr: scalar function %q is not registered", name)
	}
	return fn, nil
}

// Call compiles a call to the named function over argExecs, looked up
// against r at compile time so an unknown function fails fast instead of
// at first evaluation.
func (r *FunctionRegistry) Call(name string, argExecs []Executor) (Executor, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return func(ce *event.ComplexEvent) event.Value {
		args := make([]event.Value, len(argExecs))
		for i, a := range argExecs {
			args[i] = a(ce)
		}
		return fn(args)
	}, nil
}

func builtinCoalesce(args []event.Value) event.Value {
	for _, a := range args {
		if !a.IsNull() {
			return a
		}
	}
	return event.Null()
}

func builtinLength(args []event.Value) event.Value {
	if len(args) != 1 || args[0].Kind != event.KindString {
		return event.Null()
	}
	return event.Int(int32(len(args[0].String())))
}
