package aggregation

import (
	"testing"
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	rows [][]event.Value
}

func (s *memSink) Insert(row []event.Value) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *memSink) Query(within TimeRange) ([][]event.Value, error) {
	return s.rows, nil
}

func valueCE(ts int64, v int32) *event.ComplexEvent {
	return &event.ComplexEvent{Timestamp: ts, EventType: event.Current, OutputData: []event.Value{event.Int(v)}}
}

func expiredCE(ts int64, v int32) *event.ComplexEvent {
	return &event.ComplexEvent{Timestamp: ts, EventType: event.Expired, OutputData: []event.Value{event.Int(v)}}
}

func TestExecutor_AccumulatesWithinOneBucket(t *testing.T) {
	sink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{sink},
	)

	exec.Process(valueCE(0, 3))
	exec.Process(valueCE(int64(500*time.Millisecond), 4))

	require.Empty(t, sink.rows, "bucket must not flush before it closes")
}

func TestExecutor_FlushesOnBucketClose(t *testing.T) {
	sink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{sink},
	)

	exec.Process(valueCE(0, 3))
	exec.Process(valueCE(int64(time.Second), 9)) // crosses into the next bucket, flushing the first

	require.Len(t, sink.rows, 1)
	require.Equal(t, int64(0), sink.rows[0][0].Long())
	require.Equal(t, 3.0, sink.rows[0][1].Double())
}

func TestExecutor_ExpiredSubtractsFromBucket(t *testing.T) {
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		nil,
	)

	exec.Process(valueCE(0, 10))
	exec.Process(expiredCE(0, 4))

	sink := &memSink{}
	exec.sink = sink
	exec.Process(valueCE(int64(time.Second), 0))

	require.Equal(t, 6.0, sink.rows[0][1].Double())
}

func TestExecutor_ResetEventReinitializesWithoutAdvancingClock(t *testing.T) {
	sink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{sink},
	)

	exec.Process(valueCE(0, 10))
	exec.Process(&event.ComplexEvent{Timestamp: int64(200 * time.Millisecond), EventType: event.Reset})
	exec.Process(valueCE(int64(time.Second), 0))

	require.Equal(t, 0.0, sink.rows[0][1].Double())
}

func TestExecutor_FlushFeedsNextLargerPeriod(t *testing.T) {
	secondSink := &memSink{}
	minuteSink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{
			{Name: "seconds", BucketNanos: int64(time.Second)},
			{Name: "minutes", BucketNanos: int64(time.Minute)},
		},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{secondSink, minuteSink},
	)

	exec.Process(valueCE(0, 10))
	exec.Process(valueCE(int64(time.Second), 0)) // closes the first second-bucket

	require.Len(t, secondSink.rows, 1)
	require.Len(t, minuteSink.rows, 0, "the minute executor hasn't closed its own bucket yet")
}

func TestExecutor_GroupsByKeyIndependently(t *testing.T) {
	sink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		[]expr.Executor{expr.AttributeRef(1)},
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{sink},
	)

	ceA := &event.ComplexEvent{Timestamp: 0, EventType: event.Current, OutputData: []event.Value{event.Int(5), event.String("a")}}
	ceB := &event.ComplexEvent{Timestamp: 0, EventType: event.Current, OutputData: []event.Value{event.Int(7), event.String("b")}}
	exec.Process(ceA)
	exec.Process(ceB)
	exec.Process(&event.ComplexEvent{Timestamp: int64(time.Second), EventType: event.Current, OutputData: []event.Value{event.Int(0), event.String("a")}})

	require.Len(t, sink.rows, 2)
}

func TestExecutor_RollupPreservesGroupKeyAcrossLevels(t *testing.T) {
	secondSink := &memSink{}
	minuteSink := &memSink{}
	exec := NewChain(
		"q1",
		[]Period{
			{Name: "seconds", BucketNanos: int64(time.Second)},
			{Name: "minutes", BucketNanos: int64(time.Minute)},
		},
		[]expr.Executor{expr.AttributeRef(1)},
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{secondSink, minuteSink},
	)

	ceA := &event.ComplexEvent{Timestamp: 0, EventType: event.Current, OutputData: []event.Value{event.Int(5), event.String("a")}}
	exec.Process(ceA)
	exec.Process(&event.ComplexEvent{Timestamp: int64(time.Second), EventType: event.Current, OutputData: []event.Value{event.Int(0), event.String("a")}})

	require.Len(t, secondSink.rows, 1)
	require.Equal(t, "a", secondSink.rows[0][1].String())
	require.Equal(t, 5.0, secondSink.rows[0][2].Double())
}

func TestQueryByPeriod_FiltersByBucketStartRange(t *testing.T) {
	sink := &memSink{rows: [][]event.Value{
		{event.Long(0), event.Double(1)},
		{event.Long(int64(time.Hour)), event.Double(2)},
	}}
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		[]BucketSink{sink},
	)

	rows, err := QueryByPeriod(exec, "seconds", TimeRange{From: 0, To: int64(time.Minute)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestQueryByPeriod_UnknownPeriodErrors(t *testing.T) {
	exec := NewChain(
		"q1",
		[]Period{{Name: "seconds", BucketNanos: int64(time.Second)}},
		nil,
		[]SlotSpec{{Name: "total", Value: expr.AttributeRef(0), New: NewSum}},
		nil,
	)

	_, err := QueryByPeriod(exec, "hours", TimeRange{})
	require.Error(t, err)
}
