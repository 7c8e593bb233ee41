package window

import (
	"container/heap"
	gosort "sort"

	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/processor"
)

type sortItem struct {
	ce  *event.ComplexEvent
	key float64
}

// sortHeap is a container/heap.Interface whose root is always the
// worst-ranked retained item — the one evicted first when capacity is
// exceeded. For Desc order (keep the largest N) the root is the smallest
// retained key; for Asc order (keep the smallest N) the root is the
// largest.
type sortHeap struct {
	items []*sortItem
	order Order
}

func (h sortHeap) Len() int { return len(h.items) }
func (h sortHeap) Less(i, j int) bool {
	if h.order == Desc {
		return h.items[i].key < h.items[j].key
	}
	return h.items[i].key > h.items[j].key
}
func (h sortHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *sortHeap) Push(x any)   { h.items = append(h.items, x.(*sortItem)) }
func (h *sortHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Sort keeps the top-N retained events ranked by a numeric key, evicting
// the worst-ranked event as Expired once the Nth+1 arrival would exceed
// capacity.
type Sort struct {
	base
	size int
	by   expr.Executor
	h    *sortHeap
}

// NewSort builds a Sort(size, by, order) window.
func NewSort(name string, size int, by expr.Executor, order Order) *Sort {
	return &Sort{
		base: base{name: name},
		size: size,
		by:   by,
		h:    &sortHeap{order: order},
	}
}

func (w *Sort) Process(chunk *event.ComplexEvent) {
	for n := chunk; n != nil; {
		next := n.Next
		n.Next = nil
		w.processOne(n)
		n = next
	}
}

func (w *Sort) processOne(ce *event.ComplexEvent) {
	key, _ := w.by(ce).AsFloat64()

	w.mu.Lock()
	heap.Push(w.h, &sortItem{ce: ce.Clone(), key: key})
	var expired *event.ComplexEvent
	if w.h.Len() > w.size {
		worst := heap.Pop(w.h).(*sortItem)
		expired = event.NewExpired(worst.ce)
	}
	w.mu.Unlock()

	out := ce
	if expired != nil {
		out = event.Append(out, expired)
		w.emitExpired(1)
	}
	w.Forward(out)
}

// Snapshot returns the currently retained events in stable rank order,
// best-ranked first, without mutating the window.
func (w *Sort) Snapshot() []*event.ComplexEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := make([]*sortItem, len(w.h.items))
	copy(items, w.h.items)
	gosort.SliceStable(items, func(i, j int) bool {
		if w.h.order == Desc {
			return items[i].key > items[j].key
		}
		return items[i].key < items[j].key
	})

	out := make([]*event.ComplexEvent, len(items))
	for i, it := range items {
		out[i] = it.ce
	}
	return out
}

func (w *Sort) Clone(qctx *processor.QueryContext) processor.Processor {
	return NewSort(w.name, w.size, w.by, w.h.order)
}

func (w *Sort) IsStateful() bool               { return true }
func (w *Sort) ProcessingMode() processor.Mode { return processor.Default }
