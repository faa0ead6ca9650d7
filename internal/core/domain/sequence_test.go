package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchHit_TitleField(t *testing.T) {
	hit := SearchHit{Title: "gi|12345|gb|AB000001.1| Testus genus 16S"}

	tests := []struct {
		pos  int
		want string
	}{
		{0, "gi"},
		{1, "12345"},
		{2, "gb"},
		{3, "AB000001.1"},
	}
	for _, tt := range tests {
		got, err := hit.TitleField(tt.pos)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSearchHit_TitleField_Errors(t *testing.T) {
	_, err := SearchHit{Title: "gi|12345"}.TitleField(5)
	assert.Error(t, err)

	_, err = SearchHit{Title: "gi||gb"}.TitleField(1)
	assert.Error(t, err)

	_, err = SearchHit{Title: "gi|1"}.TitleField(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = SearchHit{Title: "no pipes here"}.TitleField(1)
	assert.Error(t, err)
}

func TestGenusFromOrganism(t *testing.T) {
	tests := map[string]GenusLabel{
		"Homo sapiens":                 "Homo",
		"Escherichia coli K-12":        "Escherichia",
		"  Testus   genus ":            "Testus",
		"Bacillus":                     "Bacillus",
		"uncultured bacterium clone 7": "uncultured",
	}
	for organism, want := range tests {
		got, err := GenusFromOrganism(organism)
		require.NoError(t, err, organism)
		assert.Equal(t, want, got, organism)
	}
}

func TestGenusFromOrganism_Empty(t *testing.T) {
	_, err := GenusFromOrganism("   ")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRelatedQuery(t *testing.T) {
	assert.Equal(t, "Homo AND COX1", RelatedQuery("Homo", " COX1 "))
}

func TestRetrieval_CollectionAndFailures(t *testing.T) {
	r := &Retrieval{
		Query: "Testus AND 16S",
		IDs:   []string{"1", "2", "3"},
		Outcomes: []FetchOutcome{
			{ID: "1", Record: &SequenceRecord{ID: "A.1", Sequence: "ACGT"}},
			{ID: "2", Err: &FetchError{ID: "2", Err: errors.New("timeout")}},
			{ID: "3", Record: &SequenceRecord{ID: "C.1", Sequence: "GGCC"}},
		},
	}

	collection := r.Collection()
	require.Len(t, collection, 2)
	assert.Equal(t, "A.1", collection[0].ID)
	assert.Equal(t, "C.1", collection[1].ID)

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "2", failures[0].ID)
	assert.ErrorIs(t, failures[0].Err, ErrFetch)
}

func TestFetchOutcome_OK(t *testing.T) {
	assert.True(t, FetchOutcome{ID: "1", Record: &SequenceRecord{}}.OK())
	assert.False(t, FetchOutcome{ID: "1"}.OK())
	assert.False(t, FetchOutcome{ID: "1", Record: &SequenceRecord{}, Err: ErrFetch}.OK())
}
