package join

import (
	"testing"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/stretchr/testify/require"
)

// fakeTable is a minimal TableLookup stand-in: it owns a fixed set of
// rows and applies condition the same way a real table would (probe
// attributes concatenated with the row).
type fakeTable struct {
	rows [][]event.Value
}

func (t *fakeTable) FindRowsForJoin(probe *event.ComplexEvent, condition expr.Executor) [][]event.Value {
	var matches [][]event.Value
	for _, r := range t.rows {
		merged := append(append([]event.Value{}, probe.OutputData...), r...)
		ce := &event.ComplexEvent{OutputData: merged}
		if expr.Bool(condition, ce) {
			matches = append(matches, r)
		}
	}
	return matches
}

func TestTableJoin_InnerEmitsOneRowPerMatch(t *testing.T) {
	tbl := &fakeTable{rows: [][]event.Value{
		{event.Int(5), event.String("a")},
		{event.Int(9), event.String("b")},
	}}
	j := NewTableJoin(Inner, tbl, 2, eqCondition())
	out := &collector{}
	j.SetNext(out)

	j.Process(row(1, event.Int(5)))

	require.Len(t, out.seen, 1)
	require.Equal(t, "a", out.seen[0].OutputData[2].String())
}

func TestTableJoin_InnerNoMatchEmitsNothing(t *testing.T) {
	tbl := &fakeTable{rows: [][]event.Value{{event.Int(9), event.String("b")}}}
	j := NewTableJoin(Inner, tbl, 2, eqCondition())
	out := &collector{}
	j.SetNext(out)

	j.Process(row(1, event.Int(5)))

	require.Empty(t, out.seen)
}

func TestTableJoin_LeftOuterPadsOnMiss(t *testing.T) {
	tbl := &fakeTable{rows: nil}
	j := NewTableJoin(LeftOuter, tbl, 2, eqCondition())
	out := &collector{}
	j.SetNext(out)

	j.Process(row(1, event.Int(5)))

	require.Len(t, out.seen, 1)
	require.True(t, out.seen[0].OutputData[1].IsNull())
	require.True(t, out.seen[0].OutputData[2].IsNull())
}
