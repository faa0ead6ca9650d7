package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmail          = "ncbi.email"
	keyAPIKey         = "ncbi.api_key"
	keyTool           = "ncbi.tool"
	keyBlastURL       = "ncbi.blast_url"
	keyEutilsURL      = "ncbi.eutils_url"
	keyBlastProgram   = "ncbi.blast_program"
	keyBlastDatabase  = "ncbi.blast_database"
	keyDatabase       = "ncbi.database"
	keyHitTitleField  = "ncbi.hit_title_field"
	keyPollInterval   = "ncbi.poll_interval"
	keySearchTimeout  = "ncbi.search_timeout"
	keyFetchInterval  = "retrieval.interval"
	keyMaxRecords     = "retrieval.max_records"
	keyMinRecords     = "retrieval.min_records"
	keyStrict         = "retrieval.strict"
	keyAligner        = "tools.aligner"
	keyTreeBuilder    = "tools.tree_builder"
	keyTreeModel      = "tree.model"
	keyTreeAlgorithm  = "tree.algorithm"
	keyTreeThreads    = "tree.threads"
	keyTreeBootstraps = "tree.bootstraps"
	keyParsimonySeed  = "tree.parsimony_seed"
	keyBootstrapSeed  = "tree.bootstrap_seed"
	keyTreeRunName    = "tree.run_name"
	keyOutputRoot     = "output.root"
	keyOutputMetrics  = "output.metrics"
	keyOutputHistory  = "output.history"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindDuration
)

var settingKinds = map[string]valueKind{
	keyEmail:          kindString,
	keyAPIKey:         kindString,
	keyTool:           kindString,
	keyBlastURL:       kindString,
	keyEutilsURL:      kindString,
	keyBlastProgram:   kindString,
	keyBlastDatabase:  kindString,
	keyDatabase:       kindString,
	keyHitTitleField:  kindInt,
	keyPollInterval:   kindDuration,
	keySearchTimeout:  kindDuration,
	keyFetchInterval:  kindDuration,
	keyMaxRecords:     kindInt,
	keyMinRecords:     kindInt,
	keyStrict:         kindBool,
	keyAligner:        kindString,
	keyTreeBuilder:    kindString,
	keyTreeModel:      kindString,
	keyTreeAlgorithm:  kindString,
	keyTreeThreads:    kindInt,
	keyTreeBootstraps: kindInt,
	keyParsimonySeed:  kindInt,
	keyBootstrapSeed:  kindInt,
	keyTreeRunName:    kindString,
	keyOutputRoot:     kindString,
	keyOutputMetrics:  kindBool,
	keyOutputHistory:  kindBool,
}

// SettingsService resolves persisted configuration over the defaults.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the defaults overlaid with every stored value.
// Stored values that cannot be interpreted are ignored.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	return domain.Settings{
		NCBI: domain.NCBISettings{
			Email:         s.getString(keyEmail, d.NCBI.Email),
			APIKey:        s.getString(keyAPIKey, d.NCBI.APIKey),
			Tool:          s.getString(keyTool, d.NCBI.Tool),
			BlastURL:      s.getString(keyBlastURL, d.NCBI.BlastURL),
			EutilsURL:     s.getString(keyEutilsURL, d.NCBI.EutilsURL),
			BlastProgram:  s.getString(keyBlastProgram, d.NCBI.BlastProgram),
			BlastDatabase: s.getString(keyBlastDatabase, d.NCBI.BlastDatabase),
			Database:      s.getString(keyDatabase, d.NCBI.Database),
			HitTitleField: s.getInt(keyHitTitleField, d.NCBI.HitTitleField),
			PollInterval:  s.getDuration(keyPollInterval, d.NCBI.PollInterval),
			SearchTimeout: s.getDuration(keySearchTimeout, d.NCBI.SearchTimeout),
		},
		Retrieval: domain.RetrievalSettings{
			Interval:   s.getDuration(keyFetchInterval, d.Retrieval.Interval),
			MaxRecords: s.getInt(keyMaxRecords, d.Retrieval.MaxRecords),
			MinRecords: s.getInt(keyMinRecords, d.Retrieval.MinRecords),
			Strict:     s.getBool(keyStrict, d.Retrieval.Strict),
		},
		Tools: domain.ToolSettings{
			AlignerPath:     s.getString(keyAligner, d.Tools.AlignerPath),
			TreeBuilderPath: s.getString(keyTreeBuilder, d.Tools.TreeBuilderPath),
		},
		Tree: domain.TreeSettings{
			Model:         s.getString(keyTreeModel, d.Tree.Model),
			Algorithm:     s.getString(keyTreeAlgorithm, d.Tree.Algorithm),
			Threads:       s.getInt(keyTreeThreads, d.Tree.Threads),
			Bootstraps:    s.getInt(keyTreeBootstraps, d.Tree.Bootstraps),
			ParsimonySeed: int64(s.getInt(keyParsimonySeed, int(d.Tree.ParsimonySeed))),
			BootstrapSeed: int64(s.getInt(keyBootstrapSeed, int(d.Tree.BootstrapSeed))),
			RunName:       s.getString(keyTreeRunName, d.Tree.RunName),
		},
		Output: domain.OutputSettings{
			Root:    s.getString(keyOutputRoot, d.Output.Root),
			Metrics: s.getBool(keyOutputMetrics, d.Output.Metrics),
			History: s.getBool(keyOutputHistory, d.Output.History),
		},
	}, nil
}

// Value returns the stored value for key formatted as text.
func (s *SettingsService) Value(key string) (string, bool) {
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(val), true
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		typed = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", domain.ErrInvalidInput, key, value)
		}
		typed = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s expects a duration such as 1s, got %q", domain.ErrInvalidInput, key, value)
		}
		typed = d.String()
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a stored value.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingKinds[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

// Keys lists every supported key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case int, int64, float64:
		return s.configStore.GetInt(key)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
