// Package window implements the engine's retention processors: Length,
// Time, TimeBatch, Session, and Sort. Every window embeds processor.Base
// so it links into a chain like any other processor. Length, Time and
// Sort retain their own clone of whatever they buffer so the chain they
// forward stays an independently owned copy; TimeBatch and Session retain
// the arriving nodes themselves and forward them only when the bucket or
// session closes.
package window

import (
	"sync"

	"github.com/corestream/corestream/pkg/metrics"
	"github.com/corestream/corestream/pkg/processor"
)

// Order is the ranking direction a Sort window keeps its top-N by.
type Order int

const (
	Asc Order = iota
	Desc
)

// base holds the bookkeeping every concrete window shares: chain linkage
// via processor.Base, a name for metric labelling, and a mutex guarding
// the window's retained state against concurrent Process calls arriving
// from both the input stream and the Clock.
type base struct {
	processor.Base
	name string
	mu   sync.Mutex
}

func (b *base) emitExpired(n int) {
	if n > 0 {
		metrics.WindowExpiredEventsTotal.WithLabelValues(b.name).Add(float64(n))
	}
}
