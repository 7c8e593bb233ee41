package runtime

import (
	"sync/atomic"
	"time"
)

// defaultClockInterval is the tick rate an AppRuntime's window.Clock
// drives Time/TimeBatch/Session expiry on.
const defaultClockInterval = 100 * time.Millisecond

func nowNanos() int64 { return time.Now().UnixNano() }

// uint64Seq is a monotonically increasing event id generator, one per
// process, shared across every app's InputHandler the way the engine's
// event ids only need to be unique for tracing, not ordered per stream.
type uint64Seq struct{ n uint64 }

func (s *uint64Seq) next() uint64 { return atomic.AddUint64(&s.n, 1) }

var globalSeq = &uint64Seq{}
