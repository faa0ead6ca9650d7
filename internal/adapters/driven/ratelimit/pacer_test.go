package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	p := NewPacer(time.Hour)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPacer_SpacesCalls(t *testing.T) {
	interval := 50 * time.Millisecond
	p := NewPacer(interval)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}

	// Token bucket timing can be a few microseconds early.
	assert.GreaterOrEqual(t, time.Since(start), 3*interval-5*time.Millisecond)
}

func TestPacer_ZeroIntervalNeverWaits(t *testing.T) {
	p := NewPacer(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, time.Duration(0), p.Interval())
}

func TestPacer_ContextCancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, p.Wait(ctx))
}
