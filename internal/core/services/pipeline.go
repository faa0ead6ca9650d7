package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
	"github.com/meows-bio/meows/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// PipelineDeps holds the adapters one pipeline run is wired to.
type PipelineDeps struct {
	Codec     driven.SequenceCodec
	Searcher  driven.SimilaritySearcher
	Database  driven.RecordDatabase
	Pacer     driven.Pacer
	Tools     driven.ToolRunner
	Artifacts driven.ArtifactStore

	// Runs records history. Optional.
	Runs driven.RunStore

	// Observers receive progress in registration order.
	Observers []driven.RunObserver
}

// Pipeline drives a request through load, search, genus resolution,
// retrieval, writing, alignment and tree inference. Stages run strictly in
// order and the first failure ends the run.
type Pipeline struct {
	deps      PipelineDeps
	loader    *Loader
	search    *SearchClient
	records   *RecordFetcher
	retriever *Retriever
	writer    *SequenceWriter
	tools     *ToolStage
	now       func() time.Time
}

// NewPipeline creates a pipeline from deps.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		deps:      deps,
		loader:    NewLoader(deps.Codec),
		search:    NewSearchClient(deps.Searcher, deps.Artifacts),
		records:   NewRecordFetcher(deps.Database),
		retriever: NewRetriever(deps.Database, deps.Pacer),
		writer:    NewSequenceWriter(deps.Codec, deps.Artifacts),
		tools:     NewToolStage(deps.Tools),
		now:       time.Now,
	}
	p.retriever.OnFetch(func(o domain.FetchOutcome, done, total int) {
		if o.OK() {
			p.milestone(domain.StageRetrieve, fmt.Sprintf("Fetched %s (%d/%d)", o.ID, done, total))
		}
	})
	return p
}

// runState carries the machine position and the values stages hand on.
type runState struct {
	stage  domain.Stage
	report *driving.RunReport
	record *domain.RunRecord
}

// Run executes every stage for req.
func (p *Pipeline) Run(ctx context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}

	layout := domain.NewRunLayout(p.deps.Artifacts.Dir(), req.Settings.Tree.RunName)
	st := &runState{
		stage: domain.StageLoad,
		report: &driving.RunReport{
			RunID:  req.RunID,
			State:  domain.StageLoad,
			Layout: layout,
		},
		record: &domain.RunRecord{
			ID:        req.RunID,
			StartedAt: p.now(),
			State:     domain.StageLoad,
			InputPath: req.InputPath,
			Gene:      req.Gene,
			RunDir:    layout.Dir,
		},
	}

	if err := p.preflight(req, layout); err != nil {
		return p.fail(ctx, st, err)
	}
	p.saveRun(ctx, st.record)

	stages := []struct {
		stage domain.Stage
		run   func(context.Context, *runState, driving.RunRequest) error
	}{
		{domain.StageLoad, p.load},
		{domain.StageSearch, p.searchTopHit},
		{domain.StageResolveGenus, p.resolveGenus},
		{domain.StageRetrieve, p.retrieve},
		{domain.StageWrite, p.write},
		{domain.StageAlign, p.align},
		{domain.StageInfer, p.infer},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, st, err)
		}
		if st.stage != s.stage {
			return p.fail(ctx, st, fmt.Errorf("illegal transition from %s to %s", st.stage, s.stage))
		}

		p.stageStarted(s.stage)
		start := p.now()
		err := s.run(ctx, st, req)
		p.stageFinished(s.stage, p.now().Sub(start), err)
		if err != nil {
			return p.fail(ctx, st, err)
		}

		if err := p.advance(st, st.stage.Next()); err != nil {
			return p.fail(ctx, st, err)
		}
	}

	st.record.FinishedAt = p.now()
	p.saveRun(context.WithoutCancel(ctx), st.record)
	logger.Info("Run %s finished in %s", req.RunID, st.record.Duration().Round(time.Millisecond))
	return st.report, nil
}

func (p *Pipeline) preflight(req driving.RunRequest, layout domain.RunLayout) error {
	if err := req.Settings.Validate(); err != nil {
		return err
	}
	if req.InputPath == "" {
		return fmt.Errorf("%w: input path is required", domain.ErrInvalidInput)
	}
	if req.Gene == "" {
		return fmt.Errorf("%w: gene name is required", domain.ErrInvalidInput)
	}

	names := make([]string, 0, len(layout.Outputs()))
	for _, path := range layout.Outputs() {
		names = append(names, filepath.Base(path))
	}
	return p.deps.Artifacts.EnsureAbsent(names...)
}

func (p *Pipeline) advance(st *runState, next domain.Stage) error {
	if !st.stage.CanTransition(next) {
		return fmt.Errorf("illegal transition from %s to %s", st.stage, next)
	}
	st.stage = next
	st.report.State = next
	st.record.State = next
	return nil
}

func (p *Pipeline) fail(ctx context.Context, st *runState, err error) (*driving.RunReport, error) {
	failed := st.stage
	stageErr := &domain.StageError{Stage: failed, Err: err}

	st.stage = domain.StageFailed
	st.report.State = domain.StageFailed
	st.report.FailedStage = failed
	st.report.Err = stageErr

	st.record.State = domain.StageFailed
	st.record.FailedStage = failed
	st.record.Error = err.Error()
	st.record.FinishedAt = p.now()
	p.saveRun(context.WithoutCancel(ctx), st.record)

	return st.report, stageErr
}

func (p *Pipeline) load(ctx context.Context, st *runState, req driving.RunRequest) error {
	rec, err := p.loader.Load(ctx, req.InputPath)
	if err != nil {
		return err
	}
	st.report.Query = rec
	p.milestone(domain.StageLoad, fmt.Sprintf("Loaded %s (%d bp)", rec.ID, rec.Len()))
	return nil
}

func (p *Pipeline) searchTopHit(ctx context.Context, st *runState, req driving.RunRequest) error {
	searchCtx := ctx
	if timeout := req.Settings.NCBI.SearchTimeout; timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	hit, accession, err := p.search.TopHit(searchCtx, st.report.Query.Sequence, req.Settings.NCBI.HitTitleField)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: search did not finish within %s", domain.ErrService, req.Settings.NCBI.SearchTimeout)
		}
		return err
	}

	st.report.TopHit = hit
	st.report.Accession = accession
	st.record.Accession = accession
	p.milestone(domain.StageSearch, fmt.Sprintf("Closest match: %s", hit.Title))
	return nil
}

func (p *Pipeline) resolveGenus(ctx context.Context, st *runState, _ driving.RunRequest) error {
	genus, _, err := p.records.Genus(ctx, st.report.Accession)
	if err != nil {
		return err
	}
	st.report.Genus = genus
	st.record.Genus = genus.String()
	p.milestone(domain.StageResolveGenus, fmt.Sprintf("Your sequence was identified within the genus: %s", genus))
	return nil
}

func (p *Pipeline) retrieve(ctx context.Context, st *runState, req driving.RunRequest) error {
	result, err := p.retriever.Retrieve(ctx, st.report.Genus, req.Gene, req.Settings.Retrieval)
	st.report.Retrieval = result
	if result != nil {
		st.record.RecordCount = len(result.Collection())
		st.record.FailedCount = len(result.Failures())
	}
	if err != nil {
		return err
	}

	fetched := len(result.Collection())
	if fetched < req.Settings.Retrieval.MinRecords {
		return fmt.Errorf("%w: %q yielded %d of %d records, need at least %d",
			domain.ErrNoRelatedSequences, result.Query, fetched, len(result.IDs), req.Settings.Retrieval.MinRecords)
	}
	if failed := len(result.Failures()); failed > 0 {
		logger.Warn("%d of %d related records could not be fetched", failed, len(result.IDs))
	}
	return nil
}

func (p *Pipeline) write(ctx context.Context, st *runState, _ driving.RunRequest) error {
	records := st.report.Retrieval.Collection()
	path, err := p.writer.Write(ctx, records)
	if err != nil {
		return err
	}
	p.milestone(domain.StageWrite, fmt.Sprintf("All %d %s sequences are in the file: %s", len(records), st.report.Genus, path))
	return nil
}

func (p *Pipeline) align(ctx context.Context, st *runState, req driving.RunRequest) error {
	layout := st.report.Layout
	if err := p.tools.Align(ctx, req.Settings.Tools.AlignerPath, layout); err != nil {
		return err
	}
	if !p.deps.Artifacts.Exists(domain.AlignmentFile) {
		logger.Warn("Aligner exited cleanly but %s was not created", layout.Alignment())
	}
	p.milestone(domain.StageAlign, fmt.Sprintf("Your alignment file is: %s", layout.Alignment()))
	return nil
}

func (p *Pipeline) infer(ctx context.Context, st *runState, req driving.RunRequest) error {
	layout := st.report.Layout
	if err := p.tools.BuildTree(ctx, req.Settings.Tools.TreeBuilderPath, req.Settings.Tree, layout); err != nil {
		return err
	}
	best := filepath.Base(layout.BestTree())
	if !p.deps.Artifacts.Exists(best) {
		logger.Warn("Tree builder exited cleanly but %s was not created", layout.BestTree())
	}
	p.milestone(domain.StageInfer, fmt.Sprintf("Your tree files are in: %s", layout.Dir))
	return nil
}

func (p *Pipeline) saveRun(ctx context.Context, rec *domain.RunRecord) {
	if p.deps.Runs == nil {
		return
	}
	if err := p.deps.Runs.Save(ctx, rec); err != nil {
		logger.Warn("Could not record run %s: %v", rec.ID, err)
	}
}

func (p *Pipeline) stageStarted(stage domain.Stage) {
	logger.Section(stage.Description())
	for _, o := range p.deps.Observers {
		o.StageStarted(stage)
	}
}

func (p *Pipeline) stageFinished(stage domain.Stage, elapsed time.Duration, err error) {
	for _, o := range p.deps.Observers {
		o.StageFinished(stage, elapsed, err)
	}
}

func (p *Pipeline) milestone(stage domain.Stage, message string) {
	logger.Debug("%s: %s", stage, message)
	for _, o := range p.deps.Observers {
		o.Milestone(stage, message)
	}
}
