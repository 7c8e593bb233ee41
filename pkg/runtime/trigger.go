package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/junction"
	"github.com/corestream/corestream/pkg/snapshot"
)

// triggerRuntime is one compiled TriggerDef's scheduler: it publishes a
// single triggeredTime (long, epoch nanoseconds) event onto its own
// junction, either once at start or repeatedly on a fixed interval. The
// ticker/stopCh goroutine shape mirrors the rest of the engine's
// background workers (pkg/window.Clock, the former teacher scheduler).
type triggerRuntime struct {
	id       string
	junction *junction.Junction
	barrier  *snapshot.Barrier
	interval time.Duration
	once     bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newTriggerRuntime(id string, j *junction.Junction, barrier *snapshot.Barrier, interval time.Duration, once bool) *triggerRuntime {
	return &triggerRuntime{
		id:       id,
		junction: j,
		barrier:  barrier,
		interval: interval,
		once:     once,
		stopCh:   make(chan struct{}),
	}
}

func (t *triggerRuntime) start() {
	t.wg.Add(1)
	go t.run()
}

func (t *triggerRuntime) stop() {
	close(t.stopCh)
	t.wg.Wait()
}

func (t *triggerRuntime) run() {
	defer t.wg.Done()

	if t.once {
		t.fire()
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.fire()
		case <-t.stopCh:
			return
		}
	}
}

func (t *triggerRuntime) fire() {
	_ = publishCurrent(context.Background(), t.junction, t.barrier, []event.Value{event.Long(nowNanos())})
}

// parseTriggerSchedule resolves a TriggerDef's At field into an interval
// and a once flag: "start" (or empty) fires exactly once, anything else
// must parse as a positive time.Duration.
func parseTriggerSchedule(at string) (time.Duration, bool, error) {
	if at == "" || at == "start" {
		return 0, true, nil
	}
	d, err := time.ParseDuration(at)
	if err != nil {
		return 0, false, fmt.Errorf("invalid schedule %q: %w", at, err)
	}
	if d <= 0 {
		return 0, false, fmt.Errorf("schedule %q must be a positive duration", at)
	}
	return d, false, nil
}
