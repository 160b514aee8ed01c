package driving

import "github.com/custodia-labs/corpus-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults for unset keys.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses and stores a single setting by key.
	Set(key, value string) error

	// Reset removes a stored setting so its default applies.
	Reset(key string) error

	// Keys returns the names of all supported settings.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks the current settings.
	Validate() error
}
