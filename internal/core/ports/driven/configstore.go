package driven

// ConfigStore is a flat key/value view over persisted configuration.
// Keys are dot-separated paths such as "chunker.chunk_size". Values are
// returned as the backing format decoded them, so a TOML integer comes
// back as int64; callers coerce.
type ConfigStore interface {
	Get(key string) (any, bool)

	// Set stores value under key. The change is persisted before Set
	// returns; on error the previous value is kept.
	Set(key string, value any) error

	// Unset removes key. Removing an absent key is not an error.
	Unset(key string) error

	// Keys returns all stored keys in sorted order.
	Keys() []string

	// Path identifies where the configuration is kept.
	Path() string
}
