package runtime

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
)

// scope maps a (streamAlias, attributeName) pair to its ordinal position
// in a ComplexEvent's OutputData at one stage of a query's compiled
// chain — a single stream's attribute layout for a plain query, or the
// left/right-concatenated layout a join produces.
type scope struct {
	segments []scopeSegment
}

type scopeSegment struct {
	alias  string
	attrs  []event.Attribute
	offset int
}

func newScope() *scope { return &scope{} }

// add appends a named segment (a stream's attribute list) to the scope at
// the next offset.
func (s *scope) add(alias string, attrs []event.Attribute) {
	offset := s.width()
	s.segments = append(s.segments, scopeSegment{alias: alias, attrs: attrs, offset: offset})
}

func (s *scope) width() int {
	w := 0
	for _, seg := range s.segments {
		w += len(seg.attrs)
	}
	return w
}

// resolve finds name within alias's segment; an empty alias resolves
// against the sole segment when there is exactly one, or the first
// segment whose attribute set contains name otherwise.
func (s *scope) resolve(alias, name string) (int, bool) {
	if alias != "" {
		for _, seg := range s.segments {
			if seg.alias == alias {
				return resolveIn(seg, name)
			}
		}
		return 0, false
	}
	if len(s.segments) == 1 {
		return resolveIn(s.segments[0], name)
	}
	for _, seg := range s.segments {
		if idx, ok := resolveIn(seg, name); ok {
			return idx, true
		}
	}
	return 0, false
}

func resolveIn(seg scopeSegment, name string) (int, bool) {
	for i, a := range seg.attrs {
		if a.Name == name {
			return seg.offset + i, true
		}
	}
	return 0, false
}

// attrAt returns the attribute declared at ordinal idx, used to infer a
// projected column's Kind when it passes an input attribute through
// unchanged.
func (s *scope) attrAt(idx int) (event.Attribute, bool) {
	for _, seg := range s.segments {
		if idx >= seg.offset && idx < seg.offset+len(seg.attrs) {
			return seg.attrs[idx-seg.offset], true
		}
	}
	return event.Attribute{}, false
}

// attributes flattens every segment's attributes in scope order, the
// layout a plain (unprojected) query forwards unchanged.
func (s *scope) attributes() []event.Attribute {
	out := make([]event.Attribute, 0, s.width())
	for _, seg := range s.segments {
		out = append(out, seg.attrs...)
	}
	return out
}

// compileExpr translates an Expr AST node into an expr.Executor against
// sc's attribute layout, looking up scalar functions on funcs.
func compileExpr(e *Expr, sc *scope, funcs *expr.FunctionRegistry) (expr.Executor, error) {
	if e == nil {
		return nil, compileErr("nil expression")
	}
	switch e.Kind {
	case ExprConstant:
		return expr.Constant(e.Const), nil

	case ExprAttribute:
		idx, ok := sc.resolve(e.Stream, e.Attribute)
		if !ok {
			return nil, compileErr("unresolved attribute %q (stream %q)", e.Attribute, e.Stream)
		}
		return expr.AttributeRef(idx), nil

	case ExprArithmetic:
		l, err := compileExpr(e.Left, sc, funcs)
		if err != nil {
			return nil, err
		}
		r, err := compileExpr(e.Right, sc, funcs)
		if err != nil {
			return nil, err
		}
		return expr.Arithmetic(e.ArithOp, l, r), nil

	case ExprComparison:
		l, err := compileExpr(e.Left, sc, funcs)
		if err != nil {
			return nil, err
		}
		r, err := compileExpr(e.Right, sc, funcs)
		if err != nil {
			return nil, err
		}
		return expr.Comparison(e.CompareOp, l, r), nil

	case ExprAnd:
		l, err := compileExpr(e.Left, sc, funcs)
		if err != nil {
			return nil, err
		}
		r, err := compileExpr(e.Right, sc, funcs)
		if err != nil {
			return nil, err
		}
		return expr.And(l, r), nil

	case ExprOr:
		l, err := compileExpr(e.Left, sc, funcs)
		if err != nil {
			return nil, err
		}
		r, err := compileExpr(e.Right, sc, funcs)
		if err != nil {
			return nil, err
		}
		return expr.Or(l, r), nil

	case ExprNot:
		operand, err := compileExpr(e.Operand, sc, funcs)
		if err != nil {
			return nil, err
		}
		return expr.Not(operand), nil

	case ExprCall:
		args := make([]expr.Executor, len(e.Args))
		for i, a := range e.Args {
			compiled, err := compileExpr(a, sc, funcs)
			if err != nil {
				return nil, err
			}
			args[i] = compiled
		}
		fn, err := funcs.Call(e.Func, args)
		if err != nil {
			return nil, compileErrWrap(err, "calling %q", e.Func)
		}
		return fn, nil

	default:
		return nil, compileErr("unknown expression kind %d", e.Kind)
	}
}
