package driven

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// RecordDatabase is a remote annotated-sequence database.
type RecordDatabase interface {
	// Fetch retrieves the full annotated record for an identifier.
	// Missing or unparsable records wrap domain.ErrRecordNotFound.
	Fetch(ctx context.Context, id string) (*domain.SequenceRecord, error)

	// Search returns the identifiers matching a boolean query, in the
	// order the database reports them, at most limit of them.
	// Malformed results wrap domain.ErrQuery.
	Search(ctx context.Context, term string, limit int) ([]string, error)
}
