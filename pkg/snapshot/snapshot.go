package snapshot

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/corestream/corestream/pkg/metrics"
)

// Snapshotable is any stateful component the app runtime can capture and
// later rebuild: window buffers, aggregation stores, tables, join
// buffers. Component/Process state mutation invariant (spec.md §3):
// every stateful component exposes exactly this pair.
type Snapshotable interface {
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// ComponentRecord is one stateful component's opaque byte buffer, keyed
// by its stable, path-style component id (e.g. "query1.window").
type ComponentRecord struct {
	ComponentID string
	Bytes       []byte
}

// Record is the persistence-store wire format (spec.md §6).
type Record struct {
	AppName    string
	RevisionID string
	Components []ComponentRecord
}

// Store is the external persistence-store collaborator (spec.md §1: only
// its interface to the core is specified here).
type Store interface {
	Save(rec Record) error
	Load(appName, revisionID string) (Record, error)
}

type registered struct {
	id   string
	comp Snapshotable
}

// Registry holds the stateful components of one running application in
// their registration order, and drives persist/restore against a Store
// through a shared Barrier.
type Registry struct {
	mu    sync.Mutex
	items []registered
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a stateful component under a stable component id.
// Registration order is persist/restore order (spec.md §4.K).
func (r *Registry) Register(componentID string, comp Snapshotable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, registered{id: componentID, comp: comp})
}

// Persist freezes barrier, snapshots every registered component in
// registration order, and writes the resulting Record to store under a
// freshly generated revision id. The runtime's own state is left
// unchanged if any component's Snapshot call fails.
func (r *Registry) Persist(barrier *Barrier, store Store, appName string) (string, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.SnapshotDuration)

	barrier.Freeze()
	defer barrier.Unfreeze()

	r.mu.Lock()
	items := make([]registered, len(r.items))
	copy(items, r.items)
	r.mu.Unlock()

	components := make([]ComponentRecord, 0, len(items))
	for _, it := range items {
		b, err := it.comp.Snapshot()
		if err != nil {
			return "", fmt.Errorf("snapshot: component %q: %w", it.id, err)
		}
		components = append(components, ComponentRecord{ComponentID: it.id, Bytes: b})
	}

	revisionID := uuid.New().String()
	rec := Record{AppName: appName, RevisionID: revisionID, Components: components}
	if err := store.Save(rec); err != nil {
		return "", fmt.Errorf("snapshot: save revision %q: %w", revisionID, err)
	}
	return revisionID, nil
}

// Restore freezes barrier, loads revisionID from store, and calls Restore
// on every registered component whose id appears in the loaded record, in
// registration order. A component with no matching entry in the record is
// left untouched. On failure the runtime is left in the in-progress
// restore state, per spec.md §7; the caller is expected to stop the app.
func (r *Registry) Restore(barrier *Barrier, store Store, appName, revisionID string) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RestoreDuration)

	barrier.Freeze()
	defer barrier.Unfreeze()

	rec, err := store.Load(appName, revisionID)
	if err != nil {
		return fmt.Errorf("restore: load revision %q: %w", revisionID, err)
	}

	byID := make(map[string][]byte, len(rec.Components))
	for _, c := range rec.Components {
		byID[c.ComponentID] = c.Bytes
	}

	r.mu.Lock()
	items := make([]registered, len(r.items))
	copy(items, r.items)
	r.mu.Unlock()

	for _, it := range items {
		data, ok := byID[it.id]
		if !ok {
			continue
		}
		if err := it.comp.Restore(data); err != nil {
			return fmt.Errorf("restore: component %q: %w", it.id, err)
		}
	}
	return nil
}
