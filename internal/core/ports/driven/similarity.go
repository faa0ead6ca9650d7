package driven

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// SimilaritySearcher submits a query to a remote similarity search service.
type SimilaritySearcher interface {
	// Submit runs the search for a nucleotide query and blocks until the
	// service has produced its report. The raw report is returned unparsed
	// so callers can persist it before decoding.
	// Failures wrap domain.ErrService.
	Submit(ctx context.Context, query string) ([]byte, error)

	// Decode parses a raw report into hits ordered by rank.
	// A malformed report wraps domain.ErrService; an empty hit list is
	// not an error.
	Decode(raw []byte) ([]domain.SearchHit, error)
}
