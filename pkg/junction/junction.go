// Package junction implements the per-stream event router that sits
// between an application's input handlers and its compiled processor
// chains: the stream junction.
package junction

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/log"
	"github.com/corestream/corestream/pkg/metrics"
	"github.com/corestream/corestream/pkg/pool"
)

var logger = log.WithComponent("junction")

// backgroundCtx is used for the fault-routing publish, which must not be
// tied to the failing publish call's (possibly already-cancelled) context.
var backgroundCtx = context.Background()

// Subscriber is anything a junction can deliver a complex-event chain to.
// A compiled processor chain satisfies this with its head processor.
type Subscriber interface {
	Process(ce *event.ComplexEvent)
}

// Mode selects a junction's internal realisation.
type Mode int

const (
	// Sync delivers on the publisher's own goroutine, in strict
	// publish order across every subscriber.
	Sync Mode = iota
	// Async enqueues onto a pool.Ring and delivers from one or more
	// consumer goroutines; order is preserved per-consumer only.
	Async
)

func (m Mode) String() string {
	if m == Async {
		return "async"
	}
	return "sync"
}

// OnErrorAction selects how a junction reacts to a subscriber panic or
// returned fault.
type OnErrorAction int

const (
	Log OnErrorAction = iota
	Stream
	Store
	Drop
)

// State is a junction's lifecycle stage.
type State int

const (
	Created State = iota
	Started
	Stopped
)

// ErrorStore is the external sink invoked by the Store on_error action.
type ErrorStore interface {
	StoreFault(streamID string, err error, ce *event.ComplexEvent)
}

// Config constructs a Junction.
type Config struct {
	ID          string
	Definition  *event.StreamDefinition
	Mode        Mode
	Capacity    int // async ring capacity, rounded to a power of two
	Consumers   int // async consumer goroutine count, default 1
	Backpressure pool.BackpressureConfig
	OnError     OnErrorAction
	FaultJunction *Junction
	ErrorStore  ErrorStore
}

// Junction routes events published on one stream to its subscribed
// processor chains, either synchronously or through a bounded async ring.
type Junction struct {
	id         string
	definition *event.StreamDefinition
	mode       Mode
	onError    OnErrorAction
	fault      *Junction
	errStore   ErrorStore

	mu          sync.RWMutex
	subscribers []Subscriber
	state       State

	pool      *pool.EventPool
	consumers int
	shutdown  atomic.Bool
	wg        sync.WaitGroup
}

// New builds a Junction in the Created state. If cfg.Mode is not set
// explicitly by the caller's selection logic, use SelectMode first. A
// fault junction can only be wired after construction, via
// SetFaultJunction, since a junction cannot name itself before it exists;
// cfg.FaultJunction is accepted here for every other case.
func New(cfg Config) *Junction {
	consumers := cfg.Consumers
	if consumers < 1 {
		consumers = 1
	}

	j := &Junction{
		id:         cfg.ID,
		definition: cfg.Definition,
		mode:       cfg.Mode,
		onError:    cfg.OnError,
		fault:      cfg.FaultJunction,
		errStore:   cfg.ErrorStore,
		consumers:  consumers,
	}

	if cfg.Mode == Async {
		capacity := cfg.Capacity
		if capacity < 1 {
			capacity = 1024
		}
		j.pool = pool.NewEventPool(cfg.ID, capacity, pool.NewBackpressureHandler(cfg.Backpressure))
	}

	return j
}

// SetFaultJunction wires (or rewires) this junction's fault sink, rejecting
// self-reference per the invariant fault_junction ≠ self.
func (j *Junction) SetFaultJunction(fault *Junction) {
	if fault == j {
		panic("junction: fault_junction must not be self")
	}
	j.mu.Lock()
	j.fault = fault
	j.mu.Unlock()
}

// ID returns the junction's stream id.
func (j *Junction) ID() string { return j.id }

// Mode returns the junction's realisation.
func (j *Junction) Mode() Mode { return j.mode }

// State returns the junction's current lifecycle stage.
func (j *Junction) State() State {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.state
}

// Subscribe adds a subscriber, rejecting a duplicate by identity.
func (j *Junction) Subscribe(sub Subscriber) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, existing := range j.subscribers {
		if existing == sub {
			return
		}
	}
	j.subscribers = append(j.subscribers, sub)
	metrics.JunctionSubscribersTotal.WithLabelValues(j.id).Set(float64(len(j.subscribers)))
}

// Unsubscribe removes a subscriber by identity, a no-op if absent.
func (j *Junction) Unsubscribe(sub Subscriber) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, existing := range j.subscribers {
		if existing == sub {
			j.subscribers = append(j.subscribers[:i], j.subscribers[i+1:]...)
			break
		}
	}
	metrics.JunctionSubscribersTotal.WithLabelValues(j.id).Set(float64(len(j.subscribers)))
}

// SubscriberCount reports the current subscriber count.
func (j *Junction) SubscriberCount() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.subscribers)
}

// Start transitions Created → Started, launching async consumers if this
// junction runs in Async mode.
func (j *Junction) Start() {
	j.mu.Lock()
	if j.state != Created {
		j.mu.Unlock()
		return
	}
	j.state = Started
	j.mu.Unlock()

	if j.mode == Async {
		for i := 0; i < j.consumers; i++ {
			j.wg.Add(1)
			go j.consumeLoop()
		}
	}
}

// Stop transitions Started → Stopped, draining the async pipeline and
// joining consumers.
func (j *Junction) Stop() {
	j.mu.Lock()
	if j.state != Started {
		j.mu.Unlock()
		return
	}
	j.state = Stopped
	j.mu.Unlock()

	if j.mode == Async {
		j.shutdown.Store(true)
		j.wg.Wait()
	}
}

// Publish delivers ce to every current subscriber according to this
// junction's mode.
func (j *Junction) Publish(ctx context.Context, ce *event.ComplexEvent) error {
	metrics.JunctionEventsTotal.WithLabelValues(j.id, j.mode.String()).Inc()

	if j.mode == Sync {
		j.deliverSync(ce)
		return nil
	}
	pe := j.pool.Acquire(ce)
	return j.pool.Submit(ctx, pe)
}

// PublishBatch delivers each event in chain order, preserving the
// within-batch ordering guarantee for synchronous junctions.
func (j *Junction) PublishBatch(ctx context.Context, head *event.ComplexEvent) error {
	for n := head; n != nil; {
		next := n.Next
		n.Next = nil
		if err := j.Publish(ctx, n); err != nil {
			return err
		}
		n = next
	}
	return nil
}

// deliverSync clones the chain for every subscriber but the last, which
// receives the original (no clone), then invokes each on the caller's
// goroutine in subscriber-registration order.
func (j *Junction) deliverSync(ce *event.ComplexEvent) {
	j.mu.RLock()
	subs := j.subscribers
	j.mu.RUnlock()

	for i, sub := range subs {
		var deliver *event.ComplexEvent
		if i == len(subs)-1 {
			deliver = ce
		} else {
			deliver = ce.Clone()
		}
		j.invoke(sub, deliver)
	}
}

// consumeLoop drains the async ring and delivers to every subscriber,
// checking the shutdown flag between items.
func (j *Junction) consumeLoop() {
	defer j.wg.Done()
	for {
		pe, ok := j.pool.TryTake()
		if !ok {
			if j.shutdown.Load() {
				return
			}
			continue
		}
		ce := pe.CE
		pe.Release()

		j.mu.RLock()
		subs := j.subscribers
		j.mu.RUnlock()

		for i, sub := range subs {
			var deliver *event.ComplexEvent
			if i == len(subs)-1 {
				deliver = ce
			} else {
				deliver = ce.Clone()
			}
			j.invoke(sub, deliver)
		}
	}
}

// invoke calls sub.Process behind a panic boundary, converting any panic
// into a fault routed per this junction's on_error action so the remaining
// subscribers still run.
func (j *Junction) invoke(sub Subscriber, ce *event.ComplexEvent) {
	defer func() {
		if r := recover(); r != nil {
			j.routeFault(ce, asError(r))
		}
	}()
	sub.Process(ce)
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{value: r}
}

type panicError struct{ value any }

func (p *panicError) Error() string { return "junction: subscriber panic" }
