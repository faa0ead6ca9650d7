package driving

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// PipelineRunner executes the identification-to-tree pipeline.
type PipelineRunner interface {
	// Run drives one request through every stage. The returned report is
	// never nil; on failure it records the failing stage and the error is
	// also returned, wrapped in a *domain.StageError.
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
}

// RunRequest describes one pipeline run.
type RunRequest struct {
	// RunID identifies the run; generated when empty.
	RunID string

	// InputPath is the single-sequence FASTA file.
	InputPath string

	// Gene is the gene name used to scope the related search.
	Gene string

	// Settings is the complete configuration for the run.
	Settings domain.Settings
}

// RunReport summarises a finished run.
type RunReport struct {
	RunID string

	// State is StageDone or StageFailed.
	State domain.Stage

	// FailedStage is the stage that failed, if any.
	FailedStage domain.Stage

	// Query is the loaded input record.
	Query *domain.SequenceRecord

	// TopHit is the selected search hit.
	TopHit *domain.SearchHit

	Accession string
	Genus     domain.GenusLabel

	// Retrieval holds every per-identifier outcome.
	Retrieval *domain.Retrieval

	// Layout locates the run's artifacts.
	Layout domain.RunLayout

	Err error
}
