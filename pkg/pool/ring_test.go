package pool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_CapacityRoundsUpToPowerOfTwo(t *testing.T) {
	r := NewRing(5)
	require.Equal(t, 8, r.Capacity())
}

func TestRing_EnqueueDequeueFIFO(t *testing.T) {
	r := NewRing(4)
	require.True(t, r.TryEnqueue(1))
	require.True(t, r.TryEnqueue(2))

	v, ok := r.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, ok = r.TryDequeue()
	require.True(t, ok)
	require.Equal(t, 2, v)

	_, ok = r.TryDequeue()
	require.False(t, ok)
}

func TestRing_FullRejectsEnqueue(t *testing.T) {
	r := NewRing(2)
	require.True(t, r.TryEnqueue("a"))
	require.True(t, r.TryEnqueue("b"))
	require.False(t, r.TryEnqueue("c"))
	require.Equal(t, 2, r.Len())
}

func TestRing_ConcurrentProducersConsumersPreserveCount(t *testing.T) {
	r := NewRing(16)
	const n = 1000

	var producers sync.WaitGroup
	for i := 0; i < n; i++ {
		producers.Add(1)
		go func(v int) {
			defer producers.Done()
			for !r.TryEnqueue(v) {
			}
		}(i)
	}

	var received atomic.Int64
	var consumers sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				if _, ok := r.TryDequeue(); ok {
					received.Add(1)
					continue
				}
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	producers.Wait()
	for received.Load() < n {
	}
	close(done)
	consumers.Wait()

	require.Equal(t, int64(n), received.Load())
}
