package ncbi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meows-bio/meows/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 2 * time.Minute

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// MaxResponseBytes bounds a single response body.
	MaxResponseBytes = 64 << 20
)

// Identity is the caller information attached to every request.
type Identity struct {
	Email  string
	Tool   string
	APIKey string
}

// Client sends identified, rate-limited requests to NCBI.
type Client struct {
	http        *http.Client
	identity    Identity
	rateLimiter *RateLimiter
	maxRetries  int
	retryDelay  time.Duration
	maxBody     int64
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimiter replaces the default limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) { c.rateLimiter = rl }
}

// WithRetries sets the retry count and initial delay for transient errors.
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.retryDelay = delay
	}
}

// WithMaxResponseBytes bounds response bodies.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// NewClient creates a client for the given identity.
func NewClient(identity Identity, opts ...Option) (*Client, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return nil, ErrMissingEmail
	}
	c := &Client{
		http:        &http.Client{Timeout: DefaultTimeout},
		identity:    identity,
		rateLimiter: NewRateLimiter(RateFor(identity.APIKey)),
		maxRetries:  MaxRetries,
		retryDelay:  RetryDelay,
		maxBody:     MaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// Get sends params as a query string to endpoint and returns the body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params)
}

// Post sends params as a form to endpoint and returns the body.
// Only rate-limit rejections are retried, since a server error may follow
// a submission the service already accepted.
func (c *Client) Post(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, params)
}

func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	params = c.identify(params)

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying %s %s (attempt %d): %v", method, endpoint, attempt+1, lastErr)
			if !IsRateLimited(lastErr) {
				if err := Sleep(ctx, delay); err != nil {
					return nil, err
				}
				delay *= 2
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.send(ctx, method, endpoint, params)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !IsRetryable(err) || (method == http.MethodPost && !IsRateLimited(err)) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("ncbi: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ncbi: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, err
	}

	body, err := readAllWithLimit(resp.Body, c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("ncbi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    summarize(body),
			URL:        endpoint,
		}
	}
	return body, nil
}

func (c *Client) identify(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set("email", c.identity.Email)
	if c.identity.Tool != "" {
		out.Set("tool", c.identity.Tool)
	}
	if c.identity.APIKey != "" {
		out.Set("api_key", c.identity.APIKey)
	}
	return out
}

func (c *Client) userAgent() string {
	tool := c.identity.Tool
	if tool == "" {
		tool = "meows"
	}
	return fmt.Sprintf("%s (%s)", tool, c.identity.Email)
}

// readAllWithLimit reads r up to limit bytes. A limit of zero or less
// reads everything.
func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(&io.LimitedReader{R: r, N: limit + 1})
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &ResponseTooLargeError{Limit: limit}
	}
	return data, nil
}

// summarize returns the first line of a response body for error messages.
func summarize(body []byte) string {
	text := strings.TrimSpace(string(body))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return "empty response"
	}
	return text
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
