package runtime

import (
	"sync"

	"github.com/corestream/corestream/pkg/config"
	"github.com/corestream/corestream/pkg/expr"
	"github.com/corestream/corestream/pkg/snapshot"
)

// EngineContext holds the collaborators shared by every app a Manager
// runs: the extension factory registries, the scalar-function registry,
// named running data sources, and the default persistence store. It is
// owned by exactly one Manager — spec.md §9's "engine context is
// per-Manager, no singletons".
type EngineContext struct {
	mu sync.RWMutex

	windowFactories     map[string]WindowFactory
	aggregatorFactories map[string]AggregatorFactory
	tableFactories      map[string]TableFactory
	sourceFactories     map[string]SourceFactory
	sinkFactories       map[string]SinkFactory
	storeFactories      map[string]StoreFactory

	functions *expr.FunctionRegistry

	dataSources      map[string]Source
	persistenceStore snapshot.Store
	config           *config.Envelope
}

// NewEngineContext builds an EngineContext with empty factory registries
// and the engine's built-in scalar functions.
func NewEngineContext() *EngineContext {
	return &EngineContext{
		windowFactories:     make(map[string]WindowFactory),
		aggregatorFactories: make(map[string]AggregatorFactory),
		tableFactories:      make(map[string]TableFactory),
		sourceFactories:     make(map[string]SourceFactory),
		sinkFactories:       make(map[string]SinkFactory),
		storeFactories:      make(map[string]StoreFactory),
		functions:           expr.NewFunctionRegistry(),
		dataSources:         make(map[string]Source),
	}
}

func (c *EngineContext) addWindowFactory(name string, f WindowFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowFactories[name] = f
}

func (c *EngineContext) windowFactory(name string) (WindowFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.windowFactories[name]
	return f, ok
}

func (c *EngineContext) addAggregatorFactory(name string, f AggregatorFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggregatorFactories[name] = f
}

func (c *EngineContext) aggregatorFactory(name string) (AggregatorFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.aggregatorFactories[name]
	return f, ok
}

func (c *EngineContext) addTableFactory(name string, f TableFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableFactories[name] = f
}

func (c *EngineContext) tableFactory(name string) (TableFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.tableFactories[name]
	return f, ok
}

func (c *EngineContext) addSourceFactory(name string, f SourceFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceFactories[name] = f
}

func (c *EngineContext) sourceFactory(name string) (SourceFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.sourceFactories[name]
	return f, ok
}

func (c *EngineContext) addSinkFactory(name string, f SinkFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinkFactories[name] = f
}

func (c *EngineContext) sinkFactory(name string) (SinkFactory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.sinkFactories[name]
	return f, ok
}

func (c *EngineContext) addStoreFactory(name string, f StoreFactory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeFactories[name] = f
}

func (c *EngineContext) addDataSource(name string, s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataSources[name] = s
}

func (c *EngineContext) dataSource(name string) (Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.dataSources[name]
	return s, ok
}

func (c *EngineContext) setPersistenceStore(s snapshot.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistenceStore = s
}

func (c *EngineContext) getPersistenceStore() snapshot.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persistenceStore
}

func (c *EngineContext) setConfig(cfg *config.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

func (c *EngineContext) getConfig() *config.Envelope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// appContext is the per-application compile-time handle into the shared
// EngineContext, carrying the app's name; it holds no configuration
// overlay of its own.
type appContext struct {
	engine *EngineContext
	name   string
}
