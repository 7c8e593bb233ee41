package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/join"
	"github.com/corestream/corestream/pkg/runtime"
	"github.com/corestream/corestream/pkg/window"
)

// appFile is the YAML-serialized form of a runtime.AppDefinition — a
// direct mirror of pkg/runtime's AST structs, not a query language of its
// own. A field left unset decodes to that struct's zero value.
type appFile struct {
	Name     string        `yaml:"name"`
	Streams  []streamYAML  `yaml:"streams"`
	Tables   []tableYAML   `yaml:"tables,omitempty"`
	Aggs     []aggYAML     `yaml:"aggregations,omitempty"`
	Triggers []triggerYAML `yaml:"triggers,omitempty"`
	Queries  []queryYAML   `yaml:"queries,omitempty"`
}

type attributeYAML struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type streamYAML struct {
	ID         string          `yaml:"id"`
	Attributes []attributeYAML `yaml:"attributes"`

	// Source optionally names a data source or source factory registered
	// on the Manager (Manager.AddDataSource/AddSourceFactory) to attach
	// to this stream.
	Source       string         `yaml:"source,omitempty"`
	SourceParams map[string]any `yaml:"sourceParams,omitempty"`
}

type triggerYAML struct {
	ID string `yaml:"id"`
	At string `yaml:"at"` // "start", or a duration like "5s"
}

type tableYAML struct {
	ID         string          `yaml:"id"`
	Kind       string          `yaml:"kind"` // "memory", "cache", "bolt"
	Attributes []attributeYAML `yaml:"attributes"`
	CacheSize  int             `yaml:"cacheSize,omitempty"`
	BoltPath   string          `yaml:"boltPath,omitempty"`
}

type exprYAML struct {
	Const   *valueYAML `yaml:"const,omitempty"`
	Attr    string     `yaml:"attr,omitempty"`
	On      string     `yaml:"on,omitempty"` // "left"/"right" for a join scope
	Compare string     `yaml:"compare,omitempty"`
	Arith   string     `yaml:"arith,omitempty"`
	And     []exprYAML `yaml:"and,omitempty"`
	Or      []exprYAML `yaml:"or,omitempty"`
	Not     *exprYAML  `yaml:"not,omitempty"`
	Left    *exprYAML  `yaml:"left,omitempty"`
	Right   *exprYAML  `yaml:"right,omitempty"`
	Call    string     `yaml:"call,omitempty"`
	Args    []exprYAML `yaml:"args,omitempty"`
}

type valueYAML struct {
	Kind string `yaml:"kind"`
	Val  any    `yaml:"value"`
}

func (v valueYAML) toValue() (event.Value, error) {
	switch v.Kind {
	case "int":
		return event.Int(int32(toInt64(v.Val))), nil
	case "long":
		return event.Long(toInt64(v.Val)), nil
	case "float":
		return event.Float(float32(toFloat64(v.Val))), nil
	case "double", "":
		return event.Double(toFloat64(v.Val)), nil
	case "bool":
		b, _ := v.Val.(bool)
		return event.Bool(b), nil
	case "string":
		return event.String(fmt.Sprintf("%v", v.Val)), nil
	case "null":
		return event.Null(), nil
	default:
		return event.Value{}, fmt.Errorf("unknown value kind %q", v.Kind)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func (e *exprYAML) toExpr() (*runtime.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch {
	case e.Const != nil:
		v, err := e.Const.toValue()
		if err != nil {
			return nil, err
		}
		return runtime.Const(v), nil
	case e.Attr != "":
		if e.On != "" {
			return runtime.AttrOn(e.On, e.Attr), nil
		}
		return runtime.Attr(e.Attr), nil
	case e.Compare != "":
		op, err := parseCompareOp(e.Compare)
		if err != nil {
			return nil, err
		}
		left, err := e.Left.toExpr()
		if err != nil {
			return nil, err
		}
		right, err := e.Right.toExpr()
		if err != nil {
			return nil, err
		}
		return &runtime.Expr{Kind: runtime.ExprComparison, CompareOp: op, Left: left, Right: right}, nil
	case e.Arith != "":
		op, err := parseArithOp(e.Arith)
		if err != nil {
			return nil, err
		}
		left, err := e.Left.toExpr()
		if err != nil {
			return nil, err
		}
		right, err := e.Right.toExpr()
		if err != nil {
			return nil, err
		}
		return &runtime.Expr{Kind: runtime.ExprArithmetic, ArithOp: op, Left: left, Right: right}, nil
	case len(e.And) > 0:
		return chainBool(e.And, runtime.ExprAnd)
	case len(e.Or) > 0:
		return chainBool(e.Or, runtime.ExprOr)
	case e.Not != nil:
		operand, err := e.Not.toExpr()
		if err != nil {
			return nil, err
		}
		return &runtime.Expr{Kind: runtime.ExprNot, Operand: operand}, nil
	case e.Call != "":
		args := make([]*runtime.Expr, len(e.Args))
		for i := range e.Args {
			a, err := e.Args[i].toExpr()
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &runtime.Expr{Kind: runtime.ExprCall, Func: e.Call, Args: args}, nil
	default:
		return nil, fmt.Errorf("empty expression node")
	}
}

// chainBool folds a list of 2+ operands into a left-deep tree of the
// given boolean ExprKind, since And/Or in the AST are binary.
func chainBool(nodes []exprYAML, kind runtime.ExprKind) (*runtime.Expr, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("empty and/or list")
	}
	acc, err := nodes[0].toExpr()
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(nodes); i++ {
		rhs, err := nodes[i].toExpr()
		if err != nil {
			return nil, err
		}
		acc = &runtime.Expr{Kind: kind, Left: acc, Right: rhs}
	}
	return acc, nil
}

func parseCompareOp(s string) (expr.CompareOp, error) {
	switch s {
	case "eq":
		return expr.Eq, nil
	case "neq":
		return expr.NotEq, nil
	case "lt":
		return expr.Lt, nil
	case "lte":
		return expr.Lte, nil
	case "gt":
		return expr.Gt, nil
	case "gte":
		return expr.Gte, nil
	default:
		return 0, fmt.Errorf("unknown comparison operator %q", s)
	}
}

func parseArithOp(s string) (expr.ArithOp, error) {
	switch s {
	case "add":
		return expr.Add, nil
	case "sub":
		return expr.Sub, nil
	case "mul":
		return expr.Mul, nil
	case "div":
		return expr.Div, nil
	default:
		return 0, fmt.Errorf("unknown arithmetic operator %q", s)
	}
}

type windowYAML struct {
	Type        string        `yaml:"type"` // "length", "time", "timeBatch", "session", "sort"
	Size        int           `yaml:"size,omitempty"`
	Duration    time.Duration `yaml:"duration,omitempty"`
	Gap         time.Duration `yaml:"gap,omitempty"`
	MaxDuration time.Duration `yaml:"maxDuration,omitempty"`
	SessionKey  *exprYAML     `yaml:"sessionKey,omitempty"`
	SortBy      *exprYAML     `yaml:"sortBy,omitempty"`
	Order       string        `yaml:"order,omitempty"` // "asc"/"desc"
}

func (w *windowYAML) toWindowSpec() (*runtime.WindowSpec, error) {
	if w == nil {
		return nil, nil
	}
	spec := &runtime.WindowSpec{
		Type:        w.Type,
		Size:        w.Size,
		Duration:    w.Duration,
		Gap:         w.Gap,
		MaxDuration: w.MaxDuration,
	}
	sessionKey, err := w.SessionKey.toExpr()
	if err != nil {
		return nil, err
	}
	spec.SessionKey = sessionKey
	sortBy, err := w.SortBy.toExpr()
	if err != nil {
		return nil, err
	}
	spec.SortBy = sortBy
	if w.Order == "desc" {
		spec.Order = window.Desc
	} else {
		spec.Order = window.Asc
	}
	return spec, nil
}

type sourceYAML struct {
	StreamID string      `yaml:"stream,omitempty"`
	TableID  string      `yaml:"table,omitempty"`
	Window   *windowYAML `yaml:"window,omitempty"`
	Filter   *exprYAML   `yaml:"filter,omitempty"`
}

func (s *sourceYAML) toQuerySource() (*runtime.QuerySource, error) {
	if s == nil {
		return nil, nil
	}
	w, err := s.Window.toWindowSpec()
	if err != nil {
		return nil, err
	}
	f, err := s.Filter.toExpr()
	if err != nil {
		return nil, err
	}
	return &runtime.QuerySource{StreamID: s.StreamID, TableID: s.TableID, Window: w, Filter: f}, nil
}

type joinYAML struct {
	Type      string     `yaml:"type"` // "inner", "leftOuter", "rightOuter", "fullOuter"
	Left      sourceYAML `yaml:"left"`
	Right     sourceYAML `yaml:"right"`
	Condition *exprYAML  `yaml:"condition"`
}

func parseJoinType(s string) (join.Type, error) {
	switch s {
	case "inner", "":
		return join.Inner, nil
	case "leftOuter":
		return join.LeftOuter, nil
	case "rightOuter":
		return join.RightOuter, nil
	case "fullOuter":
		return join.FullOuter, nil
	default:
		return 0, fmt.Errorf("unknown join type %q", s)
	}
}

type selectYAML struct {
	Alias string     `yaml:"alias"`
	Value *exprYAML  `yaml:"value,omitempty"`
	Func  string     `yaml:"func,omitempty"`
	Args  []exprYAML `yaml:"args,omitempty"`
}

func (s selectYAML) toSelectExpr() (runtime.SelectExpr, error) {
	v, err := s.Value.toExpr()
	if err != nil {
		return runtime.SelectExpr{}, err
	}
	args := make([]*runtime.Expr, len(s.Args))
	for i := range s.Args {
		a, err := s.Args[i].toExpr()
		if err != nil {
			return runtime.SelectExpr{}, err
		}
		args[i] = a
	}
	return runtime.SelectExpr{Alias: s.Alias, Value: v, Func: s.Func, Args: args}, nil
}

type outputYAML struct {
	Kind   string         `yaml:"kind"` // "table", "stream", or "sink"
	ID     string         `yaml:"id"`
	Params map[string]any `yaml:"params,omitempty"` // "sink" only
}

type queryYAML struct {
	ID         string       `yaml:"id"`
	From       *sourceYAML  `yaml:"from,omitempty"`
	Join       *joinYAML    `yaml:"join,omitempty"`
	Having     *exprYAML    `yaml:"having,omitempty"`
	Select     []selectYAML `yaml:"select,omitempty"`
	InsertInto *outputYAML  `yaml:"insertInto,omitempty"`
}

func (q queryYAML) toQuery() (runtime.Query, error) {
	out := runtime.Query{ID: q.ID}

	from, err := q.From.toQuerySource()
	if err != nil {
		return out, err
	}
	out.From = from

	if q.Join != nil {
		jt, err := parseJoinType(q.Join.Type)
		if err != nil {
			return out, err
		}
		left, err := (&q.Join.Left).toQuerySource()
		if err != nil {
			return out, err
		}
		right, err := (&q.Join.Right).toQuerySource()
		if err != nil {
			return out, err
		}
		cond, err := q.Join.Condition.toExpr()
		if err != nil {
			return out, err
		}
		out.Join = &runtime.JoinSpec{Type: jt, Left: *left, Right: *right, Condition: cond}
	}

	having, err := q.Having.toExpr()
	if err != nil {
		return out, err
	}
	out.Having = having

	sel := make([]runtime.SelectExpr, len(q.Select))
	for i := range q.Select {
		s, err := q.Select[i].toSelectExpr()
		if err != nil {
			return out, err
		}
		sel[i] = s
	}
	out.Select = sel

	if q.InsertInto != nil {
		out.InsertInto = &runtime.OutputTarget{Kind: q.InsertInto.Kind, ID: q.InsertInto.ID, Params: q.InsertInto.Params}
	}
	return out, nil
}

type periodYAML struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
}

type aggYAML struct {
	ID      string       `yaml:"id"`
	Input   string       `yaml:"input"`
	Filter  *exprYAML    `yaml:"filter,omitempty"`
	GroupBy []exprYAML   `yaml:"groupBy,omitempty"`
	Select  []selectYAML `yaml:"select"`
	Periods []periodYAML `yaml:"periods"`
}

func (a aggYAML) toAggregationDef() (runtime.AggregationDef, error) {
	out := runtime.AggregationDef{ID: a.ID, Input: a.Input}

	filter, err := a.Filter.toExpr()
	if err != nil {
		return out, err
	}
	out.Filter = filter

	group := make([]*runtime.Expr, len(a.GroupBy))
	for i := range a.GroupBy {
		g, err := a.GroupBy[i].toExpr()
		if err != nil {
			return out, err
		}
		group[i] = g
	}
	out.GroupBy = group

	sel := make([]runtime.SelectExpr, len(a.Select))
	for i := range a.Select {
		s, err := a.Select[i].toSelectExpr()
		if err != nil {
			return out, err
		}
		sel[i] = s
	}
	out.Select = sel

	periods := make([]runtime.PeriodSpec, len(a.Periods))
	for i, p := range a.Periods {
		periods[i] = runtime.PeriodSpec{Name: p.Name, Duration: p.Duration}
	}
	out.Periods = periods
	return out, nil
}

func parseTableKind(s string) (runtime.TableKind, error) {
	switch s {
	case "memory", "":
		return runtime.MemoryTable, nil
	case "cache":
		return runtime.CacheTable, nil
	case "bolt":
		return runtime.BoltTable, nil
	default:
		return 0, fmt.Errorf("unknown table kind %q", s)
	}
}

func parseKind(s string) (event.Kind, error) {
	switch s {
	case "int":
		return event.KindInt, nil
	case "long":
		return event.KindLong, nil
	case "float":
		return event.KindFloat, nil
	case "double":
		return event.KindDouble, nil
	case "bool":
		return event.KindBool, nil
	case "string":
		return event.KindString, nil
	case "object":
		return event.KindObject, nil
	default:
		return 0, fmt.Errorf("unknown attribute kind %q", s)
	}
}

func toAttributes(attrs []attributeYAML) ([]event.Attribute, error) {
	out := make([]event.Attribute, len(attrs))
	for i, a := range attrs {
		k, err := parseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		out[i] = event.Attribute{Name: a.Name, Kind: k}
	}
	return out, nil
}

// toAppDefinition translates the YAML document into the Go-struct AST
// runtime.Manager.CreateAppRuntime compiles.
func (f *appFile) toAppDefinition() (*runtime.AppDefinition, error) {
	def := &runtime.AppDefinition{Name: f.Name}

	for _, s := range f.Streams {
		attrs, err := toAttributes(s.Attributes)
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", s.ID, err)
		}
		def.StreamDefs = append(def.StreamDefs, runtime.StreamDef{
			ID: s.ID, Attributes: attrs, SourceName: s.Source, SourceParams: s.SourceParams,
		})
	}

	for _, t := range f.Tables {
		attrs, err := toAttributes(t.Attributes)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.ID, err)
		}
		kind, err := parseTableKind(t.Kind)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", t.ID, err)
		}
		def.TableDefs = append(def.TableDefs, runtime.TableDef{
			ID: t.ID, Kind: kind, Attributes: attrs, CacheSize: t.CacheSize, BoltPath: t.BoltPath,
		})
	}

	for _, a := range f.Aggs {
		aggDef, err := a.toAggregationDef()
		if err != nil {
			return nil, fmt.Errorf("aggregation %q: %w", a.ID, err)
		}
		def.AggregationDefs = append(def.AggregationDefs, aggDef)
	}

	for _, tr := range f.Triggers {
		def.TriggerDefs = append(def.TriggerDefs, runtime.TriggerDef{ID: tr.ID, At: tr.At})
	}

	for _, q := range f.Queries {
		query, err := q.toQuery()
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.ID, err)
		}
		def.Queries = append(def.Queries, query)
	}

	return def, nil
}

// loadAppFile reads and decodes an application document from path.
func loadAppFile(path string) (*runtime.AppDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading app file: %w", err)
	}
	var f appFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing app file: %w", err)
	}
	return f.toAppDefinition()
}
