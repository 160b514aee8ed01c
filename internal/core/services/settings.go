package services

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDataDir          = "corpus.data_dir"
	keyChunkSize        = "chunker.chunk_size"
	keyOverlapSize      = "chunker.overlap_size"
	keyRespectSentences = "chunker.respect_sentences"
	keyMinChunkSize     = "chunker.min_chunk_size"
	keyMergeSmall       = "chunker.merge_small"
	keyDefaultLimit     = "search.default_limit"
	keyIngestWorkers    = "ingest.workers"
	keyIngestPattern    = "ingest.pattern"
	keyIngestRecursive  = "ingest.recursive"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
)

// settingKinds lists every supported key with the type its value parses to.
var settingKinds = map[string]settingKind{
	keyDataDir:          kindString,
	keyChunkSize:        kindInt,
	keyOverlapSize:      kindInt,
	keyRespectSentences: kindBool,
	keyMinChunkSize:     kindInt,
	keyMergeSmall:       kindBool,
	keyDefaultLimit:     kindInt,
	keyIngestWorkers:    kindInt,
	keyIngestPattern:    kindString,
	keyIngestRecursive:  kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Keys that are not set
// take their default value.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Corpus: domain.CorpusSettings{
			DataDir: s.getString(keyDataDir, defaults.Corpus.DataDir),
		},
		Chunker: domain.ChunkerSettings{
			ChunkSize:        s.getInt(keyChunkSize, defaults.Chunker.ChunkSize),
			OverlapSize:      s.getInt(keyOverlapSize, defaults.Chunker.OverlapSize),
			RespectSentences: s.getBool(keyRespectSentences, defaults.Chunker.RespectSentences),
			MinChunkSize:     s.getInt(keyMinChunkSize, defaults.Chunker.MinChunkSize),
			MergeSmall:       s.getBool(keyMergeSmall, defaults.Chunker.MergeSmall),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keyDefaultLimit, defaults.Search.DefaultLimit),
		},
		Ingest: domain.IngestSettings{
			Workers:   s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			Pattern:   s.getString(keyIngestPattern, defaults.Ingest.Pattern),
			Recursive: s.getBool(keyIngestRecursive, defaults.Ingest.Recursive),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Corpus.DataDir},
		{keyChunkSize, settings.Chunker.ChunkSize},
		{keyOverlapSize, settings.Chunker.OverlapSize},
		{keyRespectSentences, settings.Chunker.RespectSentences},
		{keyMinChunkSize, settings.Chunker.MinChunkSize},
		{keyMergeSmall, settings.Chunker.MergeSmall},
		{keyDefaultLimit, settings.Search.DefaultLimit},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyIngestPattern, settings.Ingest.Pattern},
		{keyIngestRecursive, settings.Ingest.Recursive},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key and stores it. The resulting settings must
// validate; otherwise nothing is stored.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		parsed = b
	default:
		parsed = value
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	applySetting(settings, key, parsed)
	if err := validateSettings(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reset removes a stored setting so that its default applies again.
func (s *SettingsService) Reset(key string) error {
	if _, ok := settingKinds[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

// Keys returns the names of all supported settings, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

func applySetting(settings *domain.AppSettings, key string, v any) {
	switch key {
	case keyDataDir:
		settings.Corpus.DataDir = v.(string)
	case keyChunkSize:
		settings.Chunker.ChunkSize = v.(int)
	case keyOverlapSize:
		settings.Chunker.OverlapSize = v.(int)
	case keyRespectSentences:
		settings.Chunker.RespectSentences = v.(bool)
	case keyMinChunkSize:
		settings.Chunker.MinChunkSize = v.(int)
	case keyMergeSmall:
		settings.Chunker.MergeSmall = v.(bool)
	case keyDefaultLimit:
		settings.Search.DefaultLimit = v.(int)
	case keyIngestWorkers:
		settings.Ingest.Workers = v.(int)
	case keyIngestPattern:
		settings.Ingest.Pattern = v.(string)
	case keyIngestRecursive:
		settings.Ingest.Recursive = v.(bool)
	}
}

func validateSettings(settings *domain.AppSettings) error {
	if err := settings.Chunker.Validate(); err != nil {
		return err
	}
	if settings.Search.DefaultLimit <= 0 {
		return fmt.Errorf("%w: search.default_limit must be positive, got %d",
			domain.ErrInvalidInput, settings.Search.DefaultLimit)
	}
	if settings.Ingest.Workers <= 0 {
		return fmt.Errorf("%w: ingest.workers must be positive, got %d",
			domain.ErrInvalidInput, settings.Ingest.Workers)
	}
	if _, err := filepath.Match(settings.Ingest.Pattern, ""); err != nil {
		return fmt.Errorf("%w: ingest.pattern %q: %w", domain.ErrInvalidInput, settings.Ingest.Pattern, err)
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	raw, _ := s.configStore.Get(key)
	if v, ok := raw.(string); ok && v != "" {
		return v
	}
	return fallback
}

// getInt accepts any numeric encoding a config backend may produce.
func (s *SettingsService) getInt(key string, fallback int) int {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		logger.Warn("setting %s: expected a number, got %v", key, raw)
		return fallback
	}
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return fallback
	}
	b, ok := raw.(bool)
	if !ok {
		logger.Warn("setting %s: expected true or false, got %v", key, raw)
		return fallback
	}
	return b
}
