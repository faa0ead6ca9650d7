package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/core/domain"
)

func TestRunStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	run := &domain.RunRecord{ID: "run-1", Gene: "COI", State: domain.StageSearch}
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "COI", got.Gene)

	run.State = domain.StageDone
	require.NoError(t, store.Save(ctx, run))

	got, err = store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageDone, got.State)
}

func TestRunStore_SaveRejectsMissingID(t *testing.T) {
	store := NewRunStore()

	assert.ErrorIs(t, store.Save(context.Background(), &domain.RunRecord{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestRunStore_GetNotFound(t *testing.T) {
	_, err := NewRunStore().Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &domain.RunRecord{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "a", runs[2].ID)

	runs, err = store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()
	require.NoError(t, store.Save(ctx, &domain.RunRecord{ID: "x"}))

	require.NoError(t, store.Delete(ctx, "x"))
	require.NoError(t, store.Delete(ctx, "x"))

	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
