package join

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/processor"
)

// TableLookup is the subset of table.Table a stream-to-table join needs.
// A table implementation is free to use its own indexes to answer this;
// the join coordinator only sees matching rows back.
type TableLookup interface {
	// FindRowsForJoin evaluates condition against every candidate row
	// concatenated onto probe's attributes (probe's OutputData first,
	// then the row), returning the OutputData of every matching row.
	FindRowsForJoin(probe *event.ComplexEvent, condition expr.Executor) [][]event.Value
}

// TableJoin is the stream-to-table join: the opposite side is looked up
// rather than scanned from a buffer.
type TableJoin struct {
	processor.Base
	joinType   Type
	table      TableLookup
	tableWidth int
	condition  expr.Executor
}

// NewTableJoin builds a stream-to-table join. tableWidth is the table's
// row width, used to null-pad a LeftOuter/FullOuter miss.
func NewTableJoin(joinType Type, table TableLookup, tableWidth int, condition expr.Executor) *TableJoin {
	return &TableJoin{joinType: joinType, table: table, tableWidth: tableWidth, condition: condition}
}

func (j *TableJoin) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; n = n.Next {
		if n.EventType != event.Current {
			continue
		}
		j.probe(n)
	}
}

func (j *TableJoin) probe(ce *event.ComplexEvent) {
	rows := j.table.FindRowsForJoin(ce, j.condition)
	if len(rows) == 0 {
		if j.joinType == LeftOuter || j.joinType == FullOuter {
			j.Forward(j.merge(ce, nil))
		}
		return
	}
	for _, row := range rows {
		j.Forward(j.merge(ce, row))
	}
}

func (j *TableJoin) merge(probe *event.ComplexEvent, row []event.Value) *event.ComplexEvent {
	out := make([]event.Value, 0, len(probe.OutputData)+j.tableWidth)
	out = append(out, probe.OutputData...)
	if row != nil {
		out = append(out, row...)
	} else {
		out = append(out, nullRow(j.tableWidth)...)
	}
	return &event.ComplexEvent{Timestamp: probe.Timestamp, EventType: event.Current, OutputData: out}
}

func (j *TableJoin) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewTableJoin(j.joinType, j.table, j.tableWidth, j.condition)
}

func (j *TableJoin) IsStateful() bool               { return false }
func (j *TableJoin) ProcessingMode() processor.Mode { return processor.Default }
