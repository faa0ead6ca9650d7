package driven

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// RunStore persists pipeline run history.
type RunStore interface {
	// Save creates or updates a run record.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the most recent runs first, at most limit of them.
	// A limit of zero or less returns every run.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Delete removes a run record. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error
}
