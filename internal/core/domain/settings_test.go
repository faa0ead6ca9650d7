package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	s := DefaultSettings()
	s.NCBI.Email = "me@example.org"
	s.Tools.AlignerPath = "/usr/bin/muscle"
	s.Tools.TreeBuilderPath = "/usr/bin/raxmlHPC"
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "blastn", s.NCBI.BlastProgram)
	assert.Equal(t, "nt", s.NCBI.BlastDatabase)
	assert.Equal(t, "nucleotide", s.NCBI.Database)
	assert.Equal(t, 1, s.NCBI.HitTitleField)
	assert.Equal(t, time.Second, s.Retrieval.Interval)
	assert.Equal(t, 1, s.Retrieval.MinRecords)
	assert.False(t, s.Retrieval.Strict)

	assert.Equal(t, TreeSettings{
		Model:         "GTRGAMMA",
		Algorithm:     "a",
		Threads:       2,
		Bootstraps:    200,
		ParsimonySeed: 12345,
		BootstrapSeed: 12345,
		RunName:       "raxml_analysis",
	}, s.Tree)

	assert.Empty(t, s.NCBI.Email)
	assert.Empty(t, s.Tools.AlignerPath)
	assert.Empty(t, s.Output.Dir)
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, validSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"missing email", func(s *Settings) { s.NCBI.Email = " " }, "contact email is required"},
		{"bad email", func(s *Settings) { s.NCBI.Email = "nobody" }, "is not an address"},
		{"missing aligner", func(s *Settings) { s.Tools.AlignerPath = "" }, "aligner path is required"},
		{"missing tree builder", func(s *Settings) { s.Tools.TreeBuilderPath = "" }, "tree builder path is required"},
		{"negative title field", func(s *Settings) { s.NCBI.HitTitleField = -1 }, "hit title field"},
		{"zero poll interval", func(s *Settings) { s.NCBI.PollInterval = 0 }, "poll interval"},
		{"negative interval", func(s *Settings) { s.Retrieval.Interval = -time.Second }, "fetch interval"},
		{"zero max records", func(s *Settings) { s.Retrieval.MaxRecords = 0 }, "max records"},
		{"negative min records", func(s *Settings) { s.Retrieval.MinRecords = -1 }, "min records"},
		{"no threads", func(s *Settings) { s.Tree.Threads = 0 }, "tree threads"},
		{"no bootstraps", func(s *Settings) { s.Tree.Bootstraps = 0 }, "bootstrap replicates"},
		{"run name with slash", func(s *Settings) { s.Tree.RunName = "a/b" }, "not a plain name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)

			err := s.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettings_Validate_ReportsEveryProblem(t *testing.T) {
	err := DefaultSettings().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact email is required")
	assert.Contains(t, err.Error(), "aligner path is required")
	assert.Contains(t, err.Error(), "tree builder path is required")
}

func TestSettings_Validate_ZeroIntervalAllowed(t *testing.T) {
	s := validSettings()
	s.Retrieval.Interval = 0
	s.Retrieval.MinRecords = 0

	assert.NoError(t, s.Validate())
}
