package services

import (
	"context"
	"fmt"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
)

// SequenceWriter serializes the collection handed over by the pipeline.
type SequenceWriter struct {
	codec     driven.SequenceCodec
	artifacts driven.ArtifactStore
}

// NewSequenceWriter creates a writer encoding with codec into artifacts.
func NewSequenceWriter(codec driven.SequenceCodec, artifacts driven.ArtifactStore) *SequenceWriter {
	return &SequenceWriter{
		codec:     codec,
		artifacts: artifacts,
	}
}

// Write stores records, in order, as domain.SequencesFile and returns its
// path. Failures wrap domain.ErrWrite.
func (w *SequenceWriter) Write(ctx context.Context, records []domain.SequenceRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := w.artifacts.Create(domain.SequencesFile)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}

	if err := w.codec.Encode(out, records); err != nil {
		out.Close()
		return "", fmt.Errorf("%w: encode %s: %w", domain.ErrWrite, domain.SequencesFile, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", domain.ErrWrite, domain.SequencesFile, err)
	}

	return w.artifacts.Path(domain.SequencesFile), nil
}
