package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// SearchClient identifies the query sequence with a similarity search.
type SearchClient struct {
	searcher  driven.SimilaritySearcher
	artifacts driven.ArtifactStore
}

// NewSearchClient creates a search client that keeps raw reports in artifacts.
func NewSearchClient(searcher driven.SimilaritySearcher, artifacts driven.ArtifactStore) *SearchClient {
	return &SearchClient{
		searcher:  searcher,
		artifacts: artifacts,
	}
}

// TopHit searches for sequence and returns the best hit together with the
// accession found at titleField of its title.
//
// The raw report is written to domain.ReportFile before it is parsed, so a
// malformed report is still available on disk afterwards.
func (c *SearchClient) TopHit(ctx context.Context, sequence string, titleField int) (*domain.SearchHit, string, error) {
	logger.Info("Submitting %d bp to the similarity search service", len(sequence))

	raw, err := c.searcher.Submit(ctx, sequence)
	if err != nil {
		return nil, "", asServiceError(ctx, err)
	}

	if err := c.artifacts.WriteFile(domain.ReportFile, raw); err != nil {
		return nil, "", fmt.Errorf("%w: save search report: %w", domain.ErrWrite, err)
	}
	logger.Debug("Search report saved to %s", c.artifacts.Path(domain.ReportFile))

	hits, err := c.searcher.Decode(raw)
	if err != nil {
		return nil, "", asServiceError(ctx, err)
	}
	if len(hits) == 0 {
		return nil, "", fmt.Errorf("%w: the search returned an empty hit list", domain.ErrNoHitFound)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Rank < hits[j].Rank })
	top := hits[0]

	accession, err := top.TitleField(titleField)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrService, err)
	}

	logger.Info("Top hit %q (score %.1f), accession %s", top.Title, top.Score, accession)
	return &top, accession, nil
}

func asServiceError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, domain.ErrService) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrService, err)
}
