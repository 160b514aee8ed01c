package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

const (
	// HomeEnv overrides the corpus home directory.
	HomeEnv = "CORPUS_HOME"

	// ConfigFileName is the settings file inside the home directory.
	ConfigFileName = "config.toml"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists flat configuration keys to a TOML file. Every
// mutation rewrites the whole file.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// DefaultDir returns $CORPUS_HOME, or ~/.corpus when it is unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".corpus"), nil
}

// NewConfigStore opens config.toml in dir, or in DefaultDir when dir is
// empty. The directory is created if needed; the file is not created
// until the first Set.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, ConfigFileName)}
	values, err := readTOML(s.path)
	if err != nil {
		return nil, err
	}
	s.values = values
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) error {
	return s.commit(func(next map[string]any) { next[key] = value })
}

func (s *ConfigStore) Unset(key string) error {
	s.mu.RLock()
	_, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return s.commit(func(next map[string]any) { delete(next, key) })
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

func (s *ConfigStore) Path() string {
	return s.path
}

// commit applies change to a copy of the values, writes the copy and
// only then makes it current.
func (s *ConfigStore) commit(change func(map[string]any)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	change(next)
	if err := writeTOML(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func readTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	flat := map[string]any{}
	flatten(flat, "", tree)
	return flat, nil
}

func writeTOML(path string, flat map[string]any) error {
	tree, err := nest(flat)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// flatten copies tree into dst, joining table names with dots.
func flatten(dst map[string]any, prefix string, tree map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(dst, k, table)
			continue
		}
		dst[k] = v
	}
}

// nest turns dotted keys back into tables. A key that is both a value and
// a table ("a" and "a.b") cannot be represented and is rejected.
func nest(flat map[string]any) (map[string]any, error) {
	root := map[string]any{}
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		path := strings.Split(key, ".")
		table := root
		for i, name := range path[:len(path)-1] {
			switch child := table[name].(type) {
			case nil:
				t := map[string]any{}
				table[name] = t
				table = t
			case map[string]any:
				table = child
			default:
				return nil, fmt.Errorf("config key %q: %q already holds a value",
					key, strings.Join(path[:i+1], "."))
			}
		}
		leaf := path[len(path)-1]
		if _, isTable := table[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q: already a table", key)
		}
		table[leaf] = flat[key]
	}
	return root, nil
}
