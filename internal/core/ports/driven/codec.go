package driven

import (
	"io"

	"github.com/meows-bio/meows/internal/core/domain"
)

// SequenceCodec reads and writes a multi-record sequence format.
type SequenceCodec interface {
	// Decode reads every record from r in file order.
	// Unparsable input wraps domain.ErrInputFormat.
	Decode(r io.Reader) ([]domain.SequenceRecord, error)

	// Encode writes the records to w in slice order.
	Encode(w io.Writer, records []domain.SequenceRecord) error
}
