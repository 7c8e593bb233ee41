// Package config defines the versioned configuration envelope the app
// runtime reads at start-up. The core consumes only the narrow subset
// spec.md §6 names — runtime.performance.*, applications.<name>.
// definitions.<id>.parameters, and error-handling overrides; every other
// field (distributed/security/observability/monitoring/extensions) is
// pure plumbing and round-trips as an opaque document, resolving
// spec.md §9's "two overlapping configuration subsystems" open question
// by only ever reading the narrow surface.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects how a runtime's performance envelope is interpreted; the
// core only ever runs SingleNode (spec.md §1: distributed clustering is
// out of scope), but the field round-trips so a distributed wrapper built
// on top of this core can read it.
type Mode string

const (
	SingleNode  Mode = "SingleNode"
	Distributed Mode = "Distributed"
	Hybrid      Mode = "Hybrid"
)

// Metadata follows Kubernetes API conventions, matching the envelope the
// original configuration subsystem used.
type Metadata struct {
	Name        string            `yaml:"name"`
	Namespace   string            `yaml:"namespace,omitempty"`
	Environment string            `yaml:"environment,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// Performance is the only runtime subsection the core reads.
type Performance struct {
	ThreadPoolSize        int    `yaml:"thread_pool_size"`
	EventBufferSize       int    `yaml:"event_buffer_size"`
	BatchProcessing       bool   `yaml:"batch_processing"`
	BackpressureStrategy  string `yaml:"backpressure_strategy"`
}

// DefaultPerformance mirrors the original subsystem's defaults.
func DefaultPerformance() Performance {
	return Performance{
		ThreadPoolSize:       4,
		EventBufferSize:      1_000_000,
		BatchProcessing:      true,
		BackpressureStrategy: "block",
	}
}

// Runtime holds the mode plus the performance envelope.
type Runtime struct {
	Mode        Mode        `yaml:"mode"`
	Performance Performance `yaml:"performance"`
}

// Definition is one stream/table/window/aggregation/trigger's
// configuration overlay; the core reads only Parameters.
type Definition struct {
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// ErrorHandling is the narrow error-handling override surface the core
// consumes from an application's configuration.
type ErrorHandling struct {
	OnError string `yaml:"on_error,omitempty"`
}

// Application is one named application's configuration overlay.
type Application struct {
	Definitions   map[string]Definition `yaml:"definitions,omitempty"`
	ErrorHandling *ErrorHandling        `yaml:"error_handling,omitempty"`
}

// Envelope is the top-level versioned configuration document (spec.md
// §6). Distributed/Security/Observability/Monitoring/Extensions are kept
// as opaque documents: the core never reads them but a round-trip through
// Envelope must not drop them.
type Envelope struct {
	APIVersion   string                 `yaml:"apiVersion"`
	Kind         string                 `yaml:"kind"`
	Metadata     Metadata               `yaml:"metadata"`
	Runtime      Runtime                `yaml:"runtime"`
	Applications map[string]Application `yaml:"applications,omitempty"`

	Distributed   map[string]any `yaml:"distributed,omitempty"`
	Security      map[string]any `yaml:"security,omitempty"`
	Observability map[string]any `yaml:"observability,omitempty"`
	Monitoring    map[string]any `yaml:"monitoring,omitempty"`
	Extensions    map[string]any `yaml:"extensions,omitempty"`
}

// Default builds a minimal single-node envelope named name.
func Default(name string) *Envelope {
	return &Envelope{
		APIVersion: "corestream.io/v1",
		Kind:       "CorestreamConfig",
		Metadata:   Metadata{Name: name},
		Runtime: Runtime{
			Mode:        SingleNode,
			Performance: DefaultPerformance(),
		},
	}
}

// Load decodes an Envelope from r.
func Load(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := yaml.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &env, nil
}

// LoadFile opens and decodes path.
func LoadFile(path string) (*Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// ApplicationParameters returns the parameter map configured for one
// definition id under appName, or nil if unconfigured.
func (e *Envelope) ApplicationParameters(appName, definitionID string) map[string]any {
	app, ok := e.Applications[appName]
	if !ok {
		return nil
	}
	def, ok := app.Definitions[definitionID]
	if !ok {
		return nil
	}
	return def.Parameters
}
