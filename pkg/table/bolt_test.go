package table

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

func openTestBolt(t *testing.T) *bolt.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltTable_InsertFindUpdateDelete(t *testing.T) {
	db := openTestBolt(t)
	tbl, err := OpenBoltTable(db, "stocks")
	require.NoError(t, err)

	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))

	row, ok, err := tbl.Find(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 150.0, row[1].Double())

	us := CompiledUpdateSet{Assignments: []UpdateAssignment{
		{Index: 1, Value: func(Row) event.Value { return event.Double(151) }},
	}}
	matched, err := tbl.Update(eqSym("AAPL"), us)
	require.NoError(t, err)
	require.True(t, matched)

	row, _, _ = tbl.Find(eqSym("AAPL"))
	require.Equal(t, 151.0, row[1].Double())

	matched, err = tbl.Delete(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, matched)

	_, ok, _ = tbl.Find(eqSym("AAPL"))
	require.False(t, ok)
}

func TestBoltTable_FindRowsForJoinReturnsAllMatches(t *testing.T) {
	db := openTestBolt(t)
	tbl, err := OpenBoltTable(db, "stocks")
	require.NoError(t, err)

	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(151)}))
	require.NoError(t, tbl.Insert(Row{event.String("MSFT"), event.Double(300)}))

	rows, err := tbl.FindRowsForJoin(eqSym("AAPL"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestBoltTable_CloneTableCopiesRows(t *testing.T) {
	db := openTestBolt(t)
	tbl, err := OpenBoltTable(db, "stocks")
	require.NoError(t, err)
	require.NoError(t, tbl.Insert(Row{event.String("AAPL"), event.Double(150)}))

	cp, err := tbl.CloneTable()
	require.NoError(t, err)
	ok, err := cp.Contains(eqSym("AAPL"))
	require.NoError(t, err)
	require.True(t, ok)
}
