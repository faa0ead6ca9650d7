package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// FetchProgress is called after each record fetch with the 1-based
// position of the identifier and the total number of identifiers.
type FetchProgress func(outcome domain.FetchOutcome, done, total int)

// Retriever downloads every record related to a genus and gene.
//
// Fetches are strictly sequential and each one waits on the pacer first,
// so consecutive requests honour the remote service's rate limit. Running
// time therefore grows linearly with the number of identifiers.
type Retriever struct {
	db       driven.RecordDatabase
	pacer    driven.Pacer
	progress FetchProgress
}

// NewRetriever creates a retriever. A nil pacer disables pacing.
func NewRetriever(db driven.RecordDatabase, pacer driven.Pacer) *Retriever {
	return &Retriever{
		db:    db,
		pacer: pacer,
	}
}

// OnFetch registers a progress callback.
func (r *Retriever) OnFetch(fn FetchProgress) {
	r.progress = fn
}

// Retrieve searches for "genus AND gene" and fetches each identifier in the
// order the database returned them.
//
// A failed fetch is recorded as a *domain.FetchError outcome and the loop
// continues, unless opts.Strict is set, in which case the partial result is
// returned with that error. Malformed search results wrap domain.ErrQuery.
// An empty result is not an error here.
func (r *Retriever) Retrieve(
	ctx context.Context,
	genus domain.GenusLabel,
	gene string,
	opts domain.RetrievalSettings,
) (*domain.Retrieval, error) {
	query := domain.RelatedQuery(genus, gene)
	result := &domain.Retrieval{Query: query}

	ids, err := r.db.Search(ctx, query, opts.MaxRecords)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, domain.ErrQuery) {
			return result, err
		}
		return result, fmt.Errorf("%w: %q: %w", domain.ErrQuery, query, err)
	}
	result.IDs = ids
	logger.Info("Query %q matched %d records", query, len(ids))

	result.Outcomes = make([]domain.FetchOutcome, 0, len(ids))
	for i, id := range ids {
		if r.pacer != nil {
			if err := r.pacer.Wait(ctx); err != nil {
				return result, err
			}
		}

		outcome := domain.FetchOutcome{ID: id}
		rec, err := r.db.Fetch(ctx, id)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			outcome.Err = &domain.FetchError{ID: id, Err: err}
		case rec == nil:
			outcome.Err = &domain.FetchError{ID: id, Err: domain.ErrRecordNotFound}
		default:
			outcome.Record = rec
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if r.progress != nil {
			r.progress(outcome, i+1, len(ids))
		}

		if outcome.Err != nil {
			if opts.Strict {
				return result, outcome.Err
			}
			logger.Warn("Skipping %s: %v", id, outcome.Err)
			continue
		}
		logger.Debug("Fetched %s (%d/%d, %d bp)", rec.ID, i+1, len(ids), rec.Len())
	}

	return result, nil
}
