package snapshot

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrier_FreezeWaitsForActiveEntries(t *testing.T) {
	b := NewBarrier()
	b.Enter()

	frozeAt := make(chan struct{})
	go func() {
		b.Freeze()
		close(frozeAt)
	}()

	select {
	case <-frozeAt:
		t.Fatal("Freeze must not return while an Enter is still active")
	case <-time.After(20 * time.Millisecond):
	}

	b.Exit()

	select {
	case <-frozeAt:
	case <-time.After(time.Second):
		t.Fatal("Freeze must return once the active count reaches zero")
	}
	b.Unfreeze()
}

func TestBarrier_FrozenBlocksNewEnters(t *testing.T) {
	b := NewBarrier()
	b.Freeze()

	entered := make(chan struct{})
	go func() {
		b.Enter()
		close(entered)
		b.Exit()
	}()

	select {
	case <-entered:
		t.Fatal("Enter must not succeed while frozen")
	case <-time.After(20 * time.Millisecond):
	}

	b.Unfreeze()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("Enter must proceed once unfrozen")
	}
}

func TestBarrier_GuardConcurrentWithFreeze(t *testing.T) {
	b := NewBarrier()
	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Guard(func() { atomic.AddInt64(&count, 1) })
		}()
	}
	wg.Wait()
	require.Equal(t, int64(50), count)

	b.Freeze()
	b.Unfreeze()
}
