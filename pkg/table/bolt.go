package table

import (
	"fmt"
	"strconv"

	bolt "go.etcd.io/bbolt"

	"github.com/corestream/corestream/pkg/aggregation"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/metrics"
)

// BoltTable delegates every operation to a bbolt-backed bucket, one
// bucket per table, rows marshalled as JSON — directly grounded on the
// teacher's BoltStore: bucket-per-entity, json.Marshal row encoding,
// wrapped backend errors. Row keys are a monotonically increasing
// sequence number since, unlike the teacher's entities, a table row has
// no natural id of its own.
type BoltTable struct {
	name   string
	bucket []byte
	db     *bolt.DB
}

// OpenBoltTable opens (creating if absent) a bucket named name inside db.
func OpenBoltTable(db *bolt.DB, name string) (*BoltTable, error) {
	bucket := []byte(name)
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, backendErr("open table %q: %v", name, err)
	}
	return &BoltTable{name: name, bucket: bucket, db: db}, nil
}

func (t *BoltTable) Insert(row Row) error {
	metrics.TableOperationsTotal.WithLabelValues(t.name, "insert").Inc()
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := marshalRows([]Row{row})
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return backendErr("insert into %q: %v", t.name, err)
	}
	return nil
}

func (t *BoltTable) scan(fn func(key []byte, row Row) (stop bool, err error)) error {
	return t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		return b.ForEach(func(k, v []byte) error {
			rows, err := unmarshalRows(v)
			if err != nil || len(rows) == 0 {
				return err
			}
			stop, err := fn(k, rows[0])
			if err != nil {
				return err
			}
			if stop {
				return errStopScan
			}
			return nil
		})
	})
}

var errStopScan = fmt.Errorf("table: stop scan")

func (t *BoltTable) Update(cc CompiledCondition, us CompiledUpdateSet) (bool, error) {
	metrics.TableOperationsTotal.WithLabelValues(t.name, "update").Inc()
	matched := false
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		return b.ForEach(func(k, v []byte) error {
			rows, err := unmarshalRows(v)
			if err != nil || len(rows) == 0 {
				return err
			}
			if !cc.Eval(rows[0]) {
				return nil
			}
			matched = true
			updated := us.Apply(rows[0])
			data, err := marshalRows([]Row{updated})
			if err != nil {
				return err
			}
			return b.Put(k, data)
		})
	})
	if err != nil {
		return false, backendErr("update %q: %v", t.name, err)
	}
	return matched, nil
}

func (t *BoltTable) Delete(cc CompiledCondition) (bool, error) {
	metrics.TableOperationsTotal.WithLabelValues(t.name, "delete").Inc()
	matched := false
	var toDelete [][]byte
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)
		if err := b.ForEach(func(k, v []byte) error {
			rows, err := unmarshalRows(v)
			if err != nil || len(rows) == 0 {
				return err
			}
			if cc.Eval(rows[0]) {
				key := append([]byte(nil), k...)
				toDelete = append(toDelete, key)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range toDelete {
			matched = true
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, backendErr("delete from %q: %v", t.name, err)
	}
	return matched, nil
}

func (t *BoltTable) Find(cc CompiledCondition) (Row, bool, error) {
	metrics.TableOperationsTotal.WithLabelValues(t.name, "find").Inc()
	var found Row
	ok := false
	err := t.scan(func(_ []byte, row Row) (bool, error) {
		if cc.Eval(row) {
			found = CloneRow(row)
			ok = true
			return true, nil
		}
		return false, nil
	})
	if err != nil && err != errStopScan {
		return nil, false, backendErr("find in %q: %v", t.name, err)
	}
	return found, ok, nil
}

func (t *BoltTable) Contains(cc CompiledCondition) (bool, error) {
	_, ok, err := t.Find(cc)
	return ok, err
}

func (t *BoltTable) FindRowsForJoin(cc CompiledCondition) ([]Row, error) {
	metrics.TableOperationsTotal.WithLabelValues(t.name, "find_rows_for_join").Inc()
	var out []Row
	err := t.scan(func(_ []byte, row Row) (bool, error) {
		if cc.Eval(row) {
			out = append(out, CloneRow(row))
		}
		return false, nil
	})
	if err != nil && err != errStopScan {
		return nil, backendErr("find_rows_for_join in %q: %v", t.name, err)
	}
	return out, nil
}

func (t *BoltTable) CloneTable() (Table, error) {
	cp := NewInMemory(t.name + "-clone")
	err := t.scan(func(_ []byte, row Row) (bool, error) {
		cp.rows = append(cp.rows, CloneRow(row))
		return false, nil
	})
	if err != nil && err != errStopScan {
		return nil, backendErr("clone %q: %v", t.name, err)
	}
	return cp, nil
}

// Query implements pkg/aggregation.Queryable so a BoltTable can back an
// incremental aggregation period directly.
func (t *BoltTable) Query(within aggregation.TimeRange) ([][]event.Value, error) {
	var out [][]event.Value
	err := t.scan(func(_ []byte, row Row) (bool, error) {
		if len(row) == 0 {
			return false, nil
		}
		ts := row[0].Long()
		if ts >= within.From && ts < within.To {
			out = append(out, CloneRow(row))
		}
		return false, nil
	})
	if err != nil && err != errStopScan {
		return nil, backendErr("query %q: %v", t.name, err)
	}
	return out, nil
}

func seqKey(seq uint64) []byte {
	return []byte(strconv.FormatUint(seq, 10))
}
