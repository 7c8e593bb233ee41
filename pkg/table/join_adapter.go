package table

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
)

// JoinLookup adapts a Table into pkg/join.TableLookup: it flattens the
// probing event's attributes onto each candidate row into one
// ComplexEvent and runs the join's on-condition over that, the same
// flattened-attribute-layout approach pkg/join uses for its two-sided
// buffered join.
type JoinLookup struct {
	Table   Table
	OnError func(err error)
}

// NewJoinLookup wraps t for use as a stream-to-table join's opposite
// side.
func NewJoinLookup(t Table, onError func(err error)) *JoinLookup {
	return &JoinLookup{Table: t, OnError: onError}
}

// FindRowsForJoin satisfies pkg/join.TableLookup.
func (l *JoinLookup) FindRowsForJoin(probe *event.ComplexEvent, condition expr.Executor) [][]event.Value {
	cc := Compile(func(row Row) bool {
		merged := make([]event.Value, 0, len(probe.OutputData)+len(row))
		merged = append(merged, probe.OutputData...)
		merged = append(merged, row...)
		return expr.Bool(condition, &event.ComplexEvent{Timestamp: probe.Timestamp, OutputData: merged})
	})

	rows, err := l.Table.FindRowsForJoin(cc)
	if err != nil {
		if l.OnError != nil {
			l.OnError(err)
		}
		return nil
	}
	out := make([][]event.Value, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
