package runtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/corestream/corestream/pkg/config"
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/log"
	"github.com/corestream/corestream/pkg/snapshot"
)

// Manager owns every AppRuntime compiled against one EngineContext: the
// extension registries a CreateAppRuntime call draws on, and the name ->
// running-app registry CLI/API callers look apps up in.
type Manager struct {
	engine *EngineContext

	mu   sync.RWMutex
	apps map[string]*AppRuntime

	logger zerolog.Logger
}

// New builds a Manager with a fresh EngineContext and no configuration
// overlay.
func New() *Manager {
	return &Manager{
		engine: NewEngineContext(),
		apps:   make(map[string]*AppRuntime),
		logger: log.WithComponent("runtime-manager"),
	}
}

// NewWithConfig builds a Manager carrying cfg as its configuration
// overlay. The envelope is stored on the engine context only;
// CreateAppRuntime does not read it, so its performance settings,
// per-definition parameters and error-handling overrides are not applied
// to compiled apps.
func NewWithConfig(cfg *config.Envelope) *Manager {
	m := New()
	m.engine.setConfig(cfg)
	return m
}

// AddWindowFactory registers a custom window kind, looked up by
// WindowSpec.Type during compilation.
func (m *Manager) AddWindowFactory(name string, f WindowFactory) {
	m.engine.addWindowFactory(name, f)
}

// AddAggregatorFactory registers a custom aggregator, looked up by
// SelectExpr.Func during compilation.
func (m *Manager) AddAggregatorFactory(name string, f AggregatorFactory) {
	m.engine.addAggregatorFactory(name, f)
}

// AddTableFactory registers a CustomTable-kind table builder, looked up
// by TableDef.FactoryName.
func (m *Manager) AddTableFactory(name string, f TableFactory) {
	m.engine.addTableFactory(name, f)
}

// AddSourceFactory registers a named external Source builder.
func (m *Manager) AddSourceFactory(name string, f SourceFactory) {
	m.engine.addSourceFactory(name, f)
}

// AddSinkFactory registers a named external Sink builder.
func (m *Manager) AddSinkFactory(name string, f SinkFactory) {
	m.engine.addSinkFactory(name, f)
}

// AddStoreFactory registers a named snapshot.Store builder, for a
// persistence backend beyond the in-memory default.
func (m *Manager) AddStoreFactory(name string, f StoreFactory) {
	m.engine.addStoreFactory(name, f)
}

// AddScalarFunction registers a scalar function callable from any Expr's
// ExprCall node.
func (m *Manager) AddScalarFunction(name string, fn func(args []event.Value) event.Value) {
	m.engine.functions.Register(name, fn)
}

// AddDataSource registers a pre-built, named external Source, for
// callers that construct a Source directly instead of going through a
// SourceFactory.
func (m *Manager) AddDataSource(name string, s Source) {
	m.engine.addDataSource(name, s)
}

// SetPersistenceStore sets the snapshot.Store every AppRuntime created
// afterwards persists to and restores from.
func (m *Manager) SetPersistenceStore(s snapshot.Store) {
	m.engine.setPersistenceStore(s)
}

// CreateAppRuntime compiles def into a running application, registers it
// under def.Name, and returns it. The caller still must call Start.
func (m *Manager) CreateAppRuntime(def *AppDefinition) (*AppRuntime, error) {
	if def.Name == "" {
		return nil, compileErr("app definition requires a Name")
	}

	m.mu.Lock()
	if _, exists := m.apps[def.Name]; exists {
		m.mu.Unlock()
		return nil, lifecycleErr("app %q already exists", def.Name)
	}
	m.mu.Unlock()

	ctx := &appContext{engine: m.engine, name: def.Name}
	rt, err := createAppRuntime(ctx, def)
	if err != nil {
		return nil, err
	}
	rt.store = m.engine.getPersistenceStore()

	m.mu.Lock()
	m.apps[def.Name] = rt
	m.mu.Unlock()

	m.logger.Info().Str("app", def.Name).Msg("app runtime compiled")
	return rt, nil
}

// GetAppRuntime returns the running app registered under name, if any.
func (m *Manager) GetAppRuntime(name string) (*AppRuntime, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.apps[name]
	return rt, ok
}

// ShutdownAppRuntime stops and unregisters the app named name.
func (m *Manager) ShutdownAppRuntime(name string) error {
	m.mu.Lock()
	rt, ok := m.apps[name]
	if ok {
		delete(m.apps, name)
	}
	m.mu.Unlock()
	if !ok {
		return lifecycleErr("app %q is not registered", name)
	}
	if rt.State() != Started {
		return nil
	}
	return rt.Stop()
}

// ShutdownAllAppRuntimes stops and unregisters every running app,
// returning the first error encountered but attempting every shutdown
// regardless.
func (m *Manager) ShutdownAllAppRuntimes() error {
	m.mu.Lock()
	names := make([]string, 0, len(m.apps))
	for name := range m.apps {
		names = append(names, name)
	}
	m.mu.Unlock()

	var first error
	for _, name := range names {
		if err := m.ShutdownAppRuntime(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}
