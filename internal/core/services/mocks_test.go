package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meows-bio/meows/internal/adapters/driven/seqfile"
	"github.com/meows-bio/meows/internal/adapters/driven/storage/rundir"
	"github.com/meows-bio/meows/internal/core/domain"
)

// callLog records the order of calls across mocks.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// mockSearcher implements driven.SimilaritySearcher for testing.
type mockSearcher struct {
	raw       []byte
	hits      []domain.SearchHit
	submitErr error
	decodeErr error
	block     bool
	queries   []string
}

func (m *mockSearcher) Submit(ctx context.Context, query string) ([]byte, error) {
	m.queries = append(m.queries, query)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.raw == nil {
		return []byte("<BlastOutput/>"), nil
	}
	return m.raw, nil
}

func (m *mockSearcher) Decode([]byte) ([]domain.SearchHit, error) {
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	return m.hits, nil
}

// mockDatabase implements driven.RecordDatabase for testing.
type mockDatabase struct {
	records   map[string]*domain.SequenceRecord
	fetchErrs map[string]error
	ids       []string
	searchErr error
	log       *callLog

	searchTerm string
	searchMax  int
	fetched    []string
}

func (m *mockDatabase) Fetch(_ context.Context, id string) (*domain.SequenceRecord, error) {
	m.log.add("fetch %s", id)
	m.fetched = append(m.fetched, id)
	if err := m.fetchErrs[id]; err != nil {
		return nil, err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	return rec, nil
}

func (m *mockDatabase) Search(_ context.Context, term string, limit int) ([]string, error) {
	m.log.add("search %s", term)
	m.searchTerm = term
	m.searchMax = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.ids, nil
}

// countingPacer implements driven.Pacer and logs each wait.
type countingPacer struct {
	waits int
	err   error
	log   *callLog
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	p.log.add("wait")
	return p.err
}

// mockRunner implements driven.ToolRunner. It records every invocation and
// can create output files the way the real tools would.
type mockRunner struct {
	invocations []domain.ToolInvocation
	errs        map[string]error
	creates     map[string][]string
}

func (m *mockRunner) Run(_ context.Context, inv domain.ToolInvocation) (*domain.ToolResult, error) {
	m.invocations = append(m.invocations, inv)
	if err := m.errs[inv.Tool]; err != nil {
		return &domain.ToolResult{ExitCode: 1}, err
	}
	for _, name := range m.creates[inv.Tool] {
		if err := os.WriteFile(filepath.Join(inv.Dir, name), []byte("out\n"), 0o644); err != nil {
			return nil, err
		}
	}
	return &domain.ToolResult{Elapsed: time.Millisecond}, nil
}

// recordingObserver implements driven.RunObserver.
type recordingObserver struct {
	events     []string
	milestones []string
}

func (o *recordingObserver) StageStarted(stage domain.Stage) {
	o.events = append(o.events, "start "+stage.String())
}

func (o *recordingObserver) StageFinished(stage domain.Stage, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.events = append(o.events, fmt.Sprintf("finish %s %s", stage, status))
}

func (o *recordingObserver) Milestone(_ domain.Stage, message string) {
	o.milestones = append(o.milestones, message)
}

func newArtifacts(t *testing.T) *rundir.Store {
	t.Helper()
	store, err := rundir.Open(t.TempDir(), false)
	require.NoError(t, err)
	return store
}

func newCodec() *seqfile.FASTA {
	return seqfile.NewFASTA(seqfile.DefaultLineWidth)
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.fasta")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func record(id, organism, seq string) *domain.SequenceRecord {
	return &domain.SequenceRecord{ID: id, Accession: id, Organism: organism, Sequence: seq}
}

var errTimeout = errors.New("i/o timeout")
