package services

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// Loader reads the query sequence from a single-record file.
type Loader struct {
	codec driven.SequenceCodec
}

// NewLoader creates a loader that parses files with codec.
func NewLoader(codec driven.SequenceCodec) *Loader {
	return &Loader{codec: codec}
}

// Load returns the only record in the file at path.
// Zero records, several records, an empty sequence, or unparsable content
// fail with domain.ErrInputFormat.
func (l *Loader) Load(ctx context.Context, path string) (*domain.SequenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInputFormat, err)
	}
	defer rc.Close()

	records, err := l.codec.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInputFormat, path, err)
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: %s contains no sequence record", domain.ErrInputFormat, path)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s contains %d records, expected exactly one",
			domain.ErrInputFormat, path, len(records))
	}

	rec := records[0]
	if rec.Len() == 0 {
		return nil, fmt.Errorf("%w: record %q in %s has an empty sequence", domain.ErrInputFormat, rec.ID, path)
	}

	logger.Debug("Loaded %s (%d bp) from %s", rec.ID, rec.Len(), path)
	return &rec, nil
}

// openInput opens path, transparently decompressing .gz files.
func openInput(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return fh, nil
	}
	gr, err := gzip.NewReader(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{Reader: gr, Closer: fh}, nil
}
