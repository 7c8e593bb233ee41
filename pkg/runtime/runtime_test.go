package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/join"
	"github.com/corestream/corestream/pkg/snapshot"
	"github.com/corestream/corestream/pkg/table"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func simpleStreamDef(id string) StreamDef {
	return StreamDef{
		ID: id,
		Attributes: []event.Attribute{
			{Name: "symbol", Kind: event.KindString},
			{Name: "price", Kind: event.KindDouble},
		},
	}
}

func TestManagerCreateAppRuntimeFilterAndProject(t *testing.T) {
	def := &AppDefinition{
		Name:       "filterApp",
		StreamDefs: []StreamDef{simpleStreamDef("trades")},
		Queries: []Query{
			{
				ID: "cheap",
				From: &QuerySource{
					StreamID: "trades",
					Filter:   &Expr{Kind: ExprComparison, CompareOp: expr.Lt, Left: Attr("price"), Right: Const(event.Double(100))},
				},
				Select: []SelectExpr{{Alias: "symbol", Value: Attr("symbol")}},
			},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	var got []event.Value
	require.NoError(t, rt.AddCallback("cheap", func(ce *event.ComplexEvent) {
		got = ce.OutputData
	}))

	in, err := rt.InputHandler("trades")
	require.NoError(t, err)

	_, err = in.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(50)})
	require.NoError(t, err)
	waitFor(t, time.Second, func() bool { return got != nil })
	require.Equal(t, "AAPL", got[0].String())

	got = nil
	_, err = in.Send(context.Background(), []event.Value{event.String("MSFT"), event.Double(500)})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.Nil(t, got, "events above the filter threshold must not reach the callback")
}

func TestManagerCreateAppRuntimeStreamJoin(t *testing.T) {
	def := &AppDefinition{
		Name: "joinApp",
		StreamDefs: []StreamDef{
			simpleStreamDef("quotes"),
			simpleStreamDef("trades"),
		},
		Queries: []Query{
			{
				ID: "matched",
				Join: &JoinSpec{
					Type:      join.Inner,
					Left:      QuerySource{StreamID: "quotes", Window: &WindowSpec{Type: "length", Size: 5}},
					Right:     QuerySource{StreamID: "trades", Window: &WindowSpec{Type: "length", Size: 5}},
					Condition: &Expr{Kind: ExprComparison, CompareOp: expr.Eq, Left: AttrOn("left", "symbol"), Right: AttrOn("right", "symbol")},
				},
			},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	var matches int
	require.NoError(t, rt.AddCallback("matched", func(ce *event.ComplexEvent) { matches++ }))

	quotes, err := rt.InputHandler("quotes")
	require.NoError(t, err)
	trades, err := rt.InputHandler("trades")
	require.NoError(t, err)

	_, err = quotes.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(150)})
	require.NoError(t, err)
	_, err = trades.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(151)})
	require.NoError(t, err)

	waitFor(t, time.Second, func() bool { return matches == 1 })
}

func TestManagerCreateAppRuntimeAggregation(t *testing.T) {
	def := &AppDefinition{
		Name:       "aggApp",
		StreamDefs: []StreamDef{simpleStreamDef("trades")},
		AggregationDefs: []AggregationDef{
			{
				ID:      "volBySymbol",
				Input:   "trades",
				GroupBy: []*Expr{Attr("symbol")},
				Select:  []SelectExpr{{Alias: "total", Func: "sum", Args: []*Expr{Attr("price")}}},
				Periods: []PeriodSpec{{Name: "seconds", Duration: time.Second}},
			},
		},
	}

	mgr := New()
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	in, err := rt.InputHandler("trades")
	require.NoError(t, err)
	_, err = in.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(10)})
	require.NoError(t, err)
	_, err = in.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(5)})
	require.NoError(t, err)

	// The bucket only flushes once an event lands in the next bucket, so
	// wait past the period boundary before sending the event that forces
	// the flush of the first bucket.
	time.Sleep(1100 * time.Millisecond)
	_, err = in.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(1)})
	require.NoError(t, err)

	rows, err := rt.Query("volBySymbol", "seconds", 0, time.Now().UnixNano()+int64(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
}

func TestManagerLifecycle(t *testing.T) {
	def := &AppDefinition{
		Name:       "lifecycleApp",
		StreamDefs: []StreamDef{simpleStreamDef("trades")},
	}

	mgr := New()
	_, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)

	_, err = mgr.CreateAppRuntime(def)
	require.Error(t, err, "duplicate app name must fail")

	rt, ok := mgr.GetAppRuntime("lifecycleApp")
	require.True(t, ok)
	require.NoError(t, rt.Start(context.Background()))

	require.NoError(t, mgr.ShutdownAppRuntime("lifecycleApp"))
	_, ok = mgr.GetAppRuntime("lifecycleApp")
	require.False(t, ok)

	require.Error(t, mgr.ShutdownAppRuntime("lifecycleApp"))
}

func TestAppRuntimePersistRestore(t *testing.T) {
	def := &AppDefinition{
		Name:       "snapApp",
		StreamDefs: []StreamDef{simpleStreamDef("trades")},
		TableDefs: []TableDef{
			{ID: "latest", Kind: MemoryTable, Attributes: simpleStreamDef("trades").Attributes},
		},
		Queries: []Query{
			{
				ID:         "intoTable",
				From:       &QuerySource{StreamID: "trades"},
				InsertInto: &OutputTarget{Kind: "table", ID: "latest"},
			},
		},
	}

	mgr := New()
	mgr.SetPersistenceStore(snapshot.NewMemoryStore())
	rt, err := mgr.CreateAppRuntime(def)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop()

	in, err := rt.InputHandler("trades")
	require.NoError(t, err)
	_, err = in.Send(context.Background(), []event.Value{event.String("AAPL"), event.Double(150)})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	rev, err := rt.Persist()
	require.NoError(t, err)
	require.NotEmpty(t, rev)

	require.NoError(t, rt.RestoreRevision(rev))

	tbl, ok := rt.Table("latest")
	require.True(t, ok)
	ok2, err := tbl.Contains(table.Compile(func(r table.Row) bool {
		return len(r) > 0 && r[0].String() == "AAPL"
	}))
	require.NoError(t, err)
	require.True(t, ok2)
}
