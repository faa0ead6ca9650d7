package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.RunHistory = (*HistoryService)(nil)

// HistoryService looks up recorded pipeline runs.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service backed by runs.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns at most limit runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return s.runs.List(ctx, limit)
}

// Get returns the run with the given ID. When no exact match exists the ID
// is treated as a prefix, which must match exactly one run.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}

	run, err := s.runs.Get(ctx, id)
	if err == nil {
		return run, nil
	}

	all, listErr := s.runs.List(ctx, 0)
	if listErr != nil {
		return nil, listErr
	}

	var matches []domain.RunRecord
	for _, r := range all {
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: run prefix %q matches %d runs", domain.ErrInvalidInput, id, len(matches))
	}
}

// Forget deletes the run identified by id or a unique prefix of it.
func (s *HistoryService) Forget(ctx context.Context, id string) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.runs.Delete(ctx, run.ID)
}
