package window

import (
	"testing"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

func current(ts int64) *event.ComplexEvent {
	return &event.ComplexEvent{Timestamp: ts, EventType: event.Current}
}

func TestLength_NoExpiryUnderCapacity(t *testing.T) {
	w := NewLength("l", 3)
	s := &sink{}
	w.SetNext(s)

	w.Process(current(1))
	w.Process(current(2))

	require.Equal(t, 2, s.currentCount())
	require.Equal(t, 0, s.expiredCount())
}

func TestLength_EvictsOldestPastCapacity(t *testing.T) {
	w := NewLength("l", 2)
	s := &sink{}
	w.SetNext(s)

	w.Process(current(1))
	w.Process(current(2))
	w.Process(current(3))

	require.Equal(t, 3, s.currentCount())
	require.Equal(t, 1, s.expiredCount())
	// the third call must forward current(3) then the expired current(1)
	require.Equal(t, event.Current, s.received[2].EventType)
	require.Equal(t, int64(3), s.received[2].Timestamp)
	require.Equal(t, event.Expired, s.received[3].EventType)
	require.Equal(t, int64(1), s.received[3].Timestamp)
}

func TestLength_SnapshotReflectsArrivalOrder(t *testing.T) {
	w := NewLength("l", 5)
	w.Process(current(1))
	w.Process(current(2))

	snap := w.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, int64(1), snap[0].Timestamp)
	require.Equal(t, int64(2), snap[1].Timestamp)
}

func TestLength_CloneIsIndependent(t *testing.T) {
	w := NewLength("l", 1)
	w.Process(current(1))

	clone := w.Clone(nil).(*Length)
	s := &sink{}
	clone.SetNext(s)
	clone.Process(current(2))

	require.Equal(t, 0, s.expiredCount(), "clone must start with an empty buffer")
}
