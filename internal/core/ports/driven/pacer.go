package driven

import "context"

// Pacer spaces out requests to a rate-limited service.
type Pacer interface {
	// Wait blocks until the next request may be sent.
	Wait(ctx context.Context) error
}
