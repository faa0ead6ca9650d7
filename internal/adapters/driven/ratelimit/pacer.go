// Package ratelimit spaces out calls to remote services.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/meows-bio/meows/internal/core/ports/driven"
)

// Ensure Pacer implements the interface.
var _ driven.Pacer = (*Pacer)(nil)

// Pacer lets one call through immediately and then at most one call per
// interval. The bucket holds a single token, so idle time never builds up
// a burst.
type Pacer struct {
	interval time.Duration
	bucket   *rate.Limiter
}

// NewPacer creates a pacer for the given minimum interval.
// An interval of zero or less never waits.
func NewPacer(interval time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		interval: interval,
		bucket:   rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.bucket.Wait(ctx)
}

// Interval returns the configured minimum interval.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
