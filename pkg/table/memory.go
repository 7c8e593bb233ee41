package table

import (
	"sync"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/metrics"
)

// InMemoryTable is a row store under a read-write lock: find/contains take
// the read lock, insert/update/delete take the write lock, mirroring the
// teacher's table-row locking policy (spec.md §5).
//
// It also satisfies pkg/aggregation.Queryable, so an incremental
// aggregation's period chain can use an InMemoryTable directly as its
// per-period backing store: Insert receives one flushed bucket row
// ([bucket_start, group-by..., aggregates...]) and Query filters by the
// bucket_start stored at row[0].
type InMemoryTable struct {
	name string
	mu   sync.RWMutex
	rows []Row
}

// NewInMemory builds an empty in-memory table.
func NewInMemory(name string) *InMemoryTable {
	return &InMemoryTable{name: name}
}

func (t *InMemoryTable) Insert(row Row) error {
	t.mu.Lock()
	t.rows = append(t.rows, CloneRow(row))
	t.mu.Unlock()
	metrics.TableOperationsTotal.WithLabelValues(t.name, "insert").Inc()
	return nil
}

func (t *InMemoryTable) Update(cc CompiledCondition, us CompiledUpdateSet) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	matched := false
	for i, r := range t.rows {
		if cc.Eval(r) {
			t.rows[i] = us.Apply(r)
			matched = true
		}
	}
	metrics.TableOperationsTotal.WithLabelValues(t.name, "update").Inc()
	return matched, nil
}

func (t *InMemoryTable) Delete(cc CompiledCondition) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.rows[:0]
	matched := false
	for _, r := range t.rows {
		if cc.Eval(r) {
			matched = true
			continue
		}
		out = append(out, r)
	}
	t.rows = out
	metrics.TableOperationsTotal.WithLabelValues(t.name, "delete").Inc()
	return matched, nil
}

func (t *InMemoryTable) Find(cc CompiledCondition) (Row, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	metrics.TableOperationsTotal.WithLabelValues(t.name, "find").Inc()
	for _, r := range t.rows {
		if cc.Eval(r) {
			return CloneRow(r), true, nil
		}
	}
	return nil, false, nil
}

func (t *InMemoryTable) Contains(cc CompiledCondition) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	metrics.TableOperationsTotal.WithLabelValues(t.name, "contains").Inc()
	for _, r := range t.rows {
		if cc.Eval(r) {
			return true, nil
		}
	}
	return false, nil
}

func (t *InMemoryTable) FindRowsForJoin(cc CompiledCondition) ([]Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	metrics.TableOperationsTotal.WithLabelValues(t.name, "find_rows_for_join").Inc()
	var out []Row
	for _, r := range t.rows {
		if cc.Eval(r) {
			out = append(out, CloneRow(r))
		}
	}
	return out, nil
}

func (t *InMemoryTable) CloneTable() (Table, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := NewInMemory(t.name)
	cp.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		cp.rows[i] = CloneRow(r)
	}
	return cp, nil
}

// Snapshot captures the table's rows as JSON, so InMemoryTable can be
// registered with pkg/snapshot alongside stateful processors.
func (t *InMemoryTable) Snapshot() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return marshalRows(t.rows)
}

// Restore replaces the table's rows with the decoded snapshot.
func (t *InMemoryTable) Restore(data []byte) error {
	rows, err := unmarshalRows(data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.rows = rows
	t.mu.Unlock()
	return nil
}

// Query implements pkg/aggregation.Queryable: it returns every retained
// row whose bucket_start (row[0]) falls in [within.From, within.To).
// Bucket filtering itself is re-applied by aggregation.Executor.Query per
// spec.md §9's resolved open question; this is a first, cheap narrowing.
func (t *InMemoryTable) Query(within aggregation.TimeRange) ([][]event.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]event.Value, 0, len(t.rows))
	for _, r := range t.rows {
		if len(r) == 0 {
			continue
		}
		ts := r[0].Long()
		if ts >= within.From && ts < within.To {
			out = append(out, CloneRow(r))
		}
	}
	return out, nil
}
