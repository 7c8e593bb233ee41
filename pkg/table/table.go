// Package table implements the engine's row-store abstraction: the
// insert/update/delete/find surface every insert-into-table query and
// every stream-to-table join compiles against, with in-memory,
// cache-bounded, and bbolt-backed variants sharing one interface.
package table

import (
	"fmt"

	"github.com/corestream/corestream/pkg/event"
)

// Row is one ordered sequence of attribute values, laid out per the
// table's StreamDefinition. It is a type alias (not a distinct type) for
// []event.Value so that a Table satisfies pkg/aggregation.BucketSink's
// Insert([]event.Value) error signature without a wrapper.
type Row = []event.Value

// CloneRow makes an independent copy of row.
func CloneRow(row Row) Row {
	if row == nil {
		return nil
	}
	cp := make(Row, len(row))
	copy(cp, row)
	return cp
}

// ErrorKind classifies a table backend failure.
type ErrorKind int

const (
	Backend ErrorKind = iota
)

// Error is the table error taxonomy surfaced to callers (spec.md §7):
// every table operation failure is non-fatal to the calling query, routed
// through its fault path if one is configured.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("table: %s", e.Msg) }

func backendErr(format string, args ...any) error {
	return &Error{Kind: Backend, Msg: fmt.Sprintf(format, args...)}
}

// CompiledCondition is a pre-planned access path for find/delete/update
// operations against one table instance. The in-memory and cache variants
// keep no more than the condition executor itself since there is no index
// to plan against; a backend-specific table (e.g. BoltTable) may narrow
// this further.
type CompiledCondition struct {
	Eval func(row Row) bool
}

// Compile builds a CompiledCondition out of an expr.Executor-shaped
// predicate over a row, flattened into a ComplexEvent the way a join
// condition flattens its two sides.
func Compile(eval func(row Row) bool) CompiledCondition {
	return CompiledCondition{Eval: eval}
}

// CompiledUpdateSet is a pre-planned set of (index, value-of-row) writes
// applied by Update to the rows a CompiledCondition matches.
type CompiledUpdateSet struct {
	Assignments []UpdateAssignment
}

// UpdateAssignment writes Value(matchedRow) into position Index of the
// row being updated.
type UpdateAssignment struct {
	Index int
	Value func(matched Row) event.Value
}

// Apply produces the updated row by applying every assignment against the
// matched row, leaving unassigned positions untouched.
func (u CompiledUpdateSet) Apply(row Row) Row {
	out := CloneRow(row)
	for _, a := range u.Assignments {
		if a.Index >= 0 && a.Index < len(out) {
			out[a.Index] = a.Value(row)
		}
	}
	return out
}

// Table is the row store insert-into-table and join-against-table
// operations compile against. All operations fail with *Error{Kind:
// Backend} on a backend failure; the core treats that as non-fatal to
// the query.
type Table interface {
	// Insert appends row. Rows are not deduplicated; distinct rows that
	// compare equal under Row equality are both kept, matching the
	// teacher's append-only CreateX operations.
	Insert(row Row) error
	// Update rewrites every row matching cc, applying us, reporting
	// whether at least one row matched.
	Update(cc CompiledCondition, us CompiledUpdateSet) (bool, error)
	// Delete removes every row matching cc, reporting whether at least
	// one row matched.
	Delete(cc CompiledCondition) (bool, error)
	// Find returns the first row matching cc.
	Find(cc CompiledCondition) (Row, bool, error)
	// Contains reports whether any row matches cc.
	Contains(cc CompiledCondition) (bool, error)
	// FindRowsForJoin returns every row matching cc for a stream-to-table
	// join's incoming event; a backend with indexes may use them instead
	// of a full scan.
	FindRowsForJoin(cc CompiledCondition) ([]Row, error)
	// CloneTable returns a handle to an independent copy of the table's
	// current contents, the way a query compiles its own private working
	// copy without sharing mutation with the app-level table.
	CloneTable() (Table, error)
}
