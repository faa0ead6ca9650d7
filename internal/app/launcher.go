// Package app assembles the adapters for one pipeline run.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meows-bio/meows/internal/adapters/driven/metrics"
	"github.com/meows-bio/meows/internal/adapters/driven/ncbi"
	"github.com/meows-bio/meows/internal/adapters/driven/ncbi/blast"
	"github.com/meows-bio/meows/internal/adapters/driven/ncbi/entrez"
	"github.com/meows-bio/meows/internal/adapters/driven/ratelimit"
	"github.com/meows-bio/meows/internal/adapters/driven/seqfile"
	"github.com/meows-bio/meows/internal/adapters/driven/storage/rundir"
	"github.com/meows-bio/meows/internal/adapters/driven/toolexec"
	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
	"github.com/meows-bio/meows/internal/core/services"
	"github.com/meows-bio/meows/internal/logger"
)

// Ensure Launcher implements the interface.
var _ driving.PipelineRunner = (*Launcher)(nil)

// Option customises a Launcher.
type Option func(*Launcher)

// WithRunStore records every run in runs.
func WithRunStore(runs driven.RunStore) Option {
	return func(l *Launcher) { l.runs = runs }
}

// WithObservers adds progress observers.
func WithObservers(observers ...driven.RunObserver) Option {
	return func(l *Launcher) { l.observers = append(l.observers, observers...) }
}

// WithTransportOptions customises the NCBI transport.
func WithTransportOptions(opts ...ncbi.Option) Option {
	return func(l *Launcher) { l.transport = append(l.transport, opts...) }
}

// WithToolRunner replaces the subprocess runner.
func WithToolRunner(runner driven.ToolRunner) Option {
	return func(l *Launcher) { l.tools = runner }
}

// Launcher builds a fresh set of adapters from the request settings and
// runs the pipeline on them.
type Launcher struct {
	runs      driven.RunStore
	observers []driven.RunObserver
	transport []ncbi.Option
	tools     driven.ToolRunner
	now       func() time.Time
}

// NewLauncher creates a launcher.
func NewLauncher(opts ...Option) *Launcher {
	l := &Launcher{
		tools: toolexec.NewRunner(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run prepares the run directory and remote clients, then executes the
// pipeline. Setup failures are reported against the load stage.
func (l *Launcher) Run(ctx context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	s := req.Settings

	if err := s.Validate(); err != nil {
		return setupFailed(req, err)
	}

	artifacts, err := l.artifacts(req)
	if err != nil {
		return setupFailed(req, err)
	}
	logger.Debug("Run %s writes to %s", req.RunID, artifacts.Dir())

	transport, err := ncbi.NewClient(ncbi.Identity{
		Email:  s.NCBI.Email,
		Tool:   s.NCBI.Tool,
		APIKey: s.NCBI.APIKey,
	}, l.transport...)
	if err != nil {
		return setupFailed(req, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}
	records, err := entrez.NewClient(transport, entrez.ConfigFromSettings(s.NCBI))
	if err != nil {
		return setupFailed(req, err)
	}

	observers := append([]driven.RunObserver(nil), l.observers...)
	var stageMetrics *metrics.Observer
	if s.Output.Metrics {
		stageMetrics, err = metrics.NewObserver(prometheus.NewRegistry())
		if err != nil {
			return setupFailed(req, err)
		}
		observers = append(observers, stageMetrics)
	}

	deps := services.PipelineDeps{
		Codec:     seqfile.NewFASTA(seqfile.DefaultLineWidth),
		Searcher:  blast.NewClient(transport, blast.ConfigFromSettings(s.NCBI)),
		Database:  records,
		Pacer:     ratelimit.NewPacer(s.Retrieval.Interval),
		Tools:     l.tools,
		Artifacts: artifacts,
		Observers: observers,
	}
	if s.Output.History && l.runs != nil {
		deps.Runs = l.runs
	}

	report, runErr := services.NewPipeline(deps).Run(ctx, req)

	if stageMetrics != nil {
		path := artifacts.Path(domain.MetricsFile)
		if err := stageMetrics.WriteTextfile(path); err != nil {
			logger.Warn("Could not write metrics to %s: %v", path, err)
		}
	}
	return report, runErr
}

func (l *Launcher) artifacts(req driving.RunRequest) (*rundir.Store, error) {
	out := req.Settings.Output
	if out.Dir != "" {
		return rundir.Open(out.Dir, out.Force)
	}
	return rundir.Create(out.Root, l.now(), req.RunID)
}

func setupFailed(req driving.RunRequest, err error) (*driving.RunReport, error) {
	stageErr := &domain.StageError{Stage: domain.StageLoad, Err: err}
	return &driving.RunReport{
		RunID:       req.RunID,
		State:       domain.StageFailed,
		FailedStage: domain.StageLoad,
		Err:         stageErr,
	}, stageErr
}
