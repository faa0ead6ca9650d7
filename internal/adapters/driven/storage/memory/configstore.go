package memory

import (
	"sort"

	"github.com/meows-bio/meows/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. It backs tests and is not safe for
// concurrent use.
type ConfigStore struct {
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: map[string]any{}}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.values[key].(string)
	return v
}

// GetInt accepts the integer types the settings service and TOML produce.
func (s *ConfigStore) GetInt(key string) int {
	switch v := s.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.values[key].(bool)
	return v
}

func (s *ConfigStore) Set(key string, value any) error {
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Unset(key string) error {
	delete(s.values, key)
	return nil
}

func (s *ConfigStore) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
