package table

import (
	"testing"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

func eqSym(sym string) CompiledCondition {
	return Compile(func(row Row) bool {
		return len(row) > 0 && row[0].Kind == event.KindString && row[0].String() == sym
	})
}

func TestInMemoryTable_InsertFindContains(t *testing.T) {
	tbl := NewInMemory("stocks")
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))
	require.NoError(t, tbl.Insert(Row{event.String("MSFT"), event.Double(300)}))

	row, ok, err := tbl.Find(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 150.0, row[1].Double())

	ok, err = tbl.Contains(eqSym("GOOG"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInMemoryTable_UpdateAndDelete(t *testing.T) {
	tbl := NewInMemory("stocks")
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))

	us := CompiledUpdateSet{Assignments: []UpdateAssignment{
		{Index: 1, Value: func(Row) event.Value { return event.Double(151) }},
	}}
	matched, err := tbl.Update(eqSym("AAPL"), us)
	require.NoError(t, err)
	require.True(t, matched)

	row, _, _ := tbl.Find(eqSym("AAPL"))
	require.Equal(t, 151.0, row[1].Double())

	matched, err = tbl.Delete(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, matched)

	_, ok, _ := tbl.Find(eqSym("AAPL"))
	require.False(t, ok)
}

func TestInMemoryTable_FindRowsForJoinReturnsAllMatches(t *testing.T) {
	tbl := NewInMemory("stocks")
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(151)}))
	require.NoError(t, tbl.Insert(Row{event.String("MSFT"), event.Double(300)}))

	rows, err := tbl.FindRowsForJoin(eqSym("AAPL"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestInMemoryTable_CloneIsIndependent(t *testing.T) {
	tbl := NewInMemory("stocks")
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))

	cp, err := tbl.CloneTable()
	require.NoError(t, err)
	require.NoError(t, cp.Insert(Row{event.String("MSFT"), event.Double(300)}))

	ok, _ := tbl.Contains(eqSym("MSFT"))
	require.False(t, ok, "mutating the clone must not affect the original")
}

func TestInMemoryTable_SnapshotRestoreRoundTrips(t *testing.T) {
	tbl := NewInMemory("stocks")
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150.5)}))
	require.NoError(t, tbl.Insert(Row{event.String("MSFT"), event.Int(42)}))

	snap, err := tbl.Snapshot()
	require.NoError(t, err)

	restored := NewInMemory("stocks")
	require.NoError(t, restored.Restore(snap))

	row, ok, err := restored.Find(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 150.5, row[1].Double())
}

func TestInMemoryTable_QueryFiltersByBucketStart(t *testing.T) {
	tbl := NewInMemory("rollup")
	require.NoError(t, tbl.Insert(Row{event.Long(1000), event.Double(3)}))
	require.NoError(t, tbl.Insert(Row{event.Long(2000), event.Double(5)}))

	rows, err := tbl.Query(aggregation.TimeRange{From: 0, To: 1500})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1000), rows[0][0].Long())
}
