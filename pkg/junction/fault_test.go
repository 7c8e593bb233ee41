package junction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/stretchr/testify/require"
)

type recordingErrorStore struct {
	mu     sync.Mutex
	faults []string
}

func (s *recordingErrorStore) StoreFault(streamID string, err error, ce *event.ComplexEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, streamID)
}

func TestJunction_StoreOnErrorInvokesErrorStore(t *testing.T) {
	store := &recordingErrorStore{}
	j := New(Config{ID: "orders", Mode: Sync, OnError: Store, ErrorStore: store})
	j.Subscribe(panickingSubscriber{})
	j.Start()
	defer j.Stop()

	require.NoError(t, j.Publish(context.Background(), &event.ComplexEvent{Timestamp: 1}))
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.faults) == 1
	}, time.Second, time.Millisecond)
}
