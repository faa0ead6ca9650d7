package services

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/adapters/driven/storage/memory"
	"github.com/meows-bio/meows/internal/core/domain"
)

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestSettingsService_Set_TypedValues(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, svc.Set(keyEmail, " me@example.org "))
	require.NoError(t, svc.Set(keyMaxRecords, "50"))
	require.NoError(t, svc.Set(keyStrict, "true"))
	require.NoError(t, svc.Set(keyFetchInterval, "1500ms"))
	require.NoError(t, svc.Set(keyParsimonySeed, "999"))
	require.NoError(t, svc.Set(keyOutputHistory, "false"))

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, "me@example.org", settings.NCBI.Email)
	assert.Equal(t, 50, settings.Retrieval.MaxRecords)
	assert.True(t, settings.Retrieval.Strict)
	assert.Equal(t, 1500*time.Millisecond, settings.Retrieval.Interval)
	assert.Equal(t, int64(999), settings.Tree.ParsimonySeed)
	assert.False(t, settings.Output.History)
	assert.Equal(t, domain.DefaultTreeThreads, settings.Tree.Threads, "untouched keys keep defaults")
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown key", key: "ncbi.colour", value: "blue"},
		{name: "not an integer", key: keyTreeThreads, value: "two"},
		{name: "not a bool", key: keyStrict, value: "sometimes"},
		{name: "not a duration", key: keyFetchInterval, value: "soon"},
		{name: "negative duration", key: keyPollInterval, value: "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			svc := NewSettingsService(store)

			err := svc.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Value(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	require.NoError(t, svc.Set(keyFetchInterval, "2s"))
	require.NoError(t, svc.Set(keyTreeBootstraps, "100"))

	v, ok := svc.Value(keyFetchInterval)
	assert.True(t, ok)
	assert.Equal(t, "2s", v)

	v, ok = svc.Value(keyTreeBootstraps)
	assert.True(t, ok)
	assert.Equal(t, "100", v)

	_, ok = svc.Value(keyEmail)
	assert.False(t, ok)
}

func TestSettingsService_Unset(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	require.NoError(t, svc.Set(keyTreeModel, "GTRCAT"))

	require.NoError(t, svc.Unset(keyTreeModel))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTreeModel, settings.Tree.Model)

	assert.ErrorIs(t, svc.Unset("tree.colour"), domain.ErrInvalidInput)
}

func TestSettingsService_Get_IgnoresUnreadableValues(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(keyFetchInterval, "whenever"))
	require.NoError(t, store.Set(keyMaxRecords, "many"))
	svc := NewSettingsService(store)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFetchInterval, settings.Retrieval.Interval)
	assert.Equal(t, domain.DefaultMaxRecords, settings.Retrieval.MaxRecords)
}

func TestSettingsService_Keys(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	keys := svc.Keys()

	assert.Len(t, keys, len(settingKinds))
	assert.True(t, sort.StringsAreSorted(keys))
	assert.Contains(t, keys, keyEmail)
	assert.Contains(t, keys, keyTreeRunName)
}

func TestSettingsService_Path(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, ":memory:", svc.Path())
}
