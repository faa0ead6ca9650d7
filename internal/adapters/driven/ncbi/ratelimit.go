package ncbi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// AnonymousRate is the request rate allowed without an API key.
	AnonymousRate = 3

	// KeyedRate is the request rate allowed with an API key.
	KeyedRate = 10

	// DefaultRetryAfter is used when a 429 response has no usable
	// Retry-After header.
	DefaultRetryAfter = time.Second

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter combines proactive token-bucket throttling with the
// back-off NCBI requests through Retry-After.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	blockedUntil time.Time
	now          func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
// A perSecond of zero or less disables proactive throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
	}
}

// RateFor returns the published request rate for the given API key.
func RateFor(apiKey string) float64 {
	if apiKey != "" {
		return KeyedRate
	}
	return AnonymousRate
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	blockedUntil := r.blockedUntil
	r.mu.Unlock()

	if wait := blockedUntil.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// CheckRateLimit returns a RateLimitError for a 429 response and holds
// back subsequent requests until the advertised retry time.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	now := r.now()
	retryAt := now.Add(DefaultRetryAfter)
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			retryAt = now.Add(time.Duration(seconds) * time.Second)
		} else if at, err := http.ParseTime(v); err == nil {
			retryAt = at
		}
	}

	r.mu.Lock()
	if retryAt.After(r.blockedUntil) {
		r.blockedUntil = retryAt
	}
	r.mu.Unlock()

	return &RateLimitError{RetryAt: retryAt}
}

// BlockedUntil returns the time before which no request will be sent.
func (r *RateLimiter) BlockedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockedUntil
}
