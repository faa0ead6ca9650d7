package driving

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// RunHistory exposes past pipeline runs.
type RunHistory interface {
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns a run by ID or by a unique ID prefix.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// Forget deletes a run record. Artifacts on disk are left alone.
	Forget(ctx context.Context, id string) error
}
