package window

import (
	"testing"
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

func TestTimeBatch_NoForwardUntilBucketCloses(t *testing.T) {
	w := NewTimeBatch("tb", 10*time.Second)
	s := &sink{}
	w.SetNext(s)

	w.Process(current(0))
	w.Process(current(int64(time.Second)))

	require.Empty(t, s.received, "events must not forward before the bucket closes")
}

func TestTimeBatch_ClosesOnTimerTickReleasingCurrentThenExpired(t *testing.T) {
	w := NewTimeBatch("tb", 10*time.Second)
	s := &sink{}
	w.SetNext(s)

	w.Process(current(0))
	w.Process(current(int64(5 * time.Second)))
	w.Process(event.NewTimer(int64(11 * time.Second)))

	require.Equal(t, 2, s.currentCount())
	require.Equal(t, 2, s.expiredCount())
	// current events must precede all expired events in the emitted chain
	require.Equal(t, event.Current, s.received[0].EventType)
	require.Equal(t, event.Current, s.received[1].EventType)
	require.Equal(t, event.Expired, s.received[2].EventType)
	require.Equal(t, event.Expired, s.received[3].EventType)
}

func TestTimeBatch_EmptyBucketDoesNotForwardOnTick(t *testing.T) {
	w := NewTimeBatch("tb", 10*time.Second)
	s := &sink{}
	w.SetNext(s)

	w.Process(event.NewTimer(int64(20 * time.Second)))

	require.Empty(t, s.received)
}

func TestTimeBatch_ResetsAfterClose(t *testing.T) {
	w := NewTimeBatch("tb", 10*time.Second)
	s := &sink{}
	w.SetNext(s)

	w.Process(current(0))
	w.Process(event.NewTimer(int64(11 * time.Second)))
	w.Process(current(int64(12 * time.Second)))
	w.Process(event.NewTimer(int64(13 * time.Second)))

	require.Equal(t, 1, s.currentCount(), "second bucket must not close early")
}
