package postprocessors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its section of the pipeline
// config. A nil map means the processor's defaults.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names from a PipelineConfig to builders.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder. Registering the same name twice fails
// with domain.ErrAlreadyExists.
func (r *Registry) Register(name string, builder BuilderFunc) error {
	if name == "" || builder == nil {
		return fmt.Errorf("%w: processor name and builder are required", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.builders[name]; dup {
		return fmt.Errorf("processor %q: %w", name, domain.ErrAlreadyExists)
	}
	r.builders[name] = builder
	return nil
}

// Build runs the builder registered under name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q", domain.ErrInvalidInput, name)
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build processor %s: %w", name, err)
	}
	return proc, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names lists registered processors alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
