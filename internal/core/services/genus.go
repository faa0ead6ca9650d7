package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// RecordFetcher resolves an accession to the genus of its organism.
type RecordFetcher struct {
	db driven.RecordDatabase
}

// NewRecordFetcher creates a record fetcher backed by db.
func NewRecordFetcher(db driven.RecordDatabase) *RecordFetcher {
	return &RecordFetcher{db: db}
}

// Genus fetches the record for accession and returns the genus of its
// organism annotation together with the record.
// Any failure, including a missing annotation, wraps domain.ErrRecordNotFound.
func (f *RecordFetcher) Genus(ctx context.Context, accession string) (domain.GenusLabel, *domain.SequenceRecord, error) {
	rec, err := f.db.Fetch(ctx, accession)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, domain.ErrRecordNotFound) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %s: %w", domain.ErrRecordNotFound, accession, err)
	}
	if rec == nil {
		return "", nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, accession)
	}

	genus, err := domain.GenusFromOrganism(rec.Organism)
	if err != nil {
		return "", nil, fmt.Errorf("record %s: %w", accession, err)
	}

	logger.Debug("Record %s organism %q", rec.ID, rec.Organism)
	return genus, rec, nil
}
