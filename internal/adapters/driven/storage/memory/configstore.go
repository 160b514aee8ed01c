package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map. Nothing is persisted.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store holding a copy of each seed map, later
// maps overriding earlier ones.
func NewConfigStore(seeds ...map[string]any) *ConfigStore {
	values := map[string]any{}
	for _, seed := range seeds {
		maps.Copy(values, seed)
	}
	return &ConfigStore{values: values}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

func (s *ConfigStore) Path() string { return ":memory:" }
