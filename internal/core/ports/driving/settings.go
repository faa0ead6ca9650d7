package driving

import "github.com/meows-bio/meows/internal/core/domain"

// SettingsService manages persisted configuration.
type SettingsService interface {
	// Get resolves the stored configuration over the defaults.
	Get() (domain.Settings, error)

	// Value returns the stored raw value for a key.
	Value(key string) (string, bool)

	// Set validates and stores a value for a known key.
	Set(key, value string) error

	// Unset removes a stored value so the default applies again.
	Unset(key string) error

	// Keys lists every supported key in sorted order.
	Keys() []string

	// Path returns the configuration file location.
	Path() string
}
