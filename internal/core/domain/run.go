package domain

import (
	"path/filepath"
	"time"
)

// Fixed artifact names inside a run directory, in pipeline order.
const (
	ReportFile    = "blast_report.xml"
	SequencesFile = "all_blast_seqs.fasta"
	AlignmentFile = "muscle_output.fasta"
	MetricsFile   = "metrics.prom"
)

// RunLayout locates the artifacts of one run.
type RunLayout struct {
	Dir     string
	RunName string
}

// NewRunLayout returns the layout for dir with the given tree run name.
func NewRunLayout(dir, runName string) RunLayout {
	return RunLayout{Dir: dir, RunName: runName}
}

// Path joins name onto the run directory.
func (l RunLayout) Path(name string) string {
	return filepath.Join(l.Dir, name)
}

// Report is the raw similarity search report.
func (l RunLayout) Report() string { return l.Path(ReportFile) }

// Sequences is the multi-record FASTA handed to the aligner.
func (l RunLayout) Sequences() string { return l.Path(SequencesFile) }

// Alignment is the aligner output.
func (l RunLayout) Alignment() string { return l.Path(AlignmentFile) }

// Metrics is the Prometheus textfile for the run.
func (l RunLayout) Metrics() string { return l.Path(MetricsFile) }

// TreeFiles lists the files the tree builder writes for this run name.
func (l RunLayout) TreeFiles() []string {
	prefixes := []string{
		"RAxML_info",
		"RAxML_bestTree",
		"RAxML_bipartitions",
		"RAxML_bipartitionsBranchLabels",
		"RAxML_bootstrap",
	}
	files := make([]string, len(prefixes))
	for i, p := range prefixes {
		files[i] = l.Path(p + "." + l.RunName)
	}
	return files
}

// BestTree is the bootstrap-supported best ML tree.
func (l RunLayout) BestTree() string {
	return l.Path("RAxML_bipartitions." + l.RunName)
}

// Outputs lists every artifact the pipeline may create in the run directory.
func (l RunLayout) Outputs() []string {
	out := []string{l.Report(), l.Sequences(), l.Alignment()}
	return append(out, l.TreeFiles()...)
}

// RunRecord is the history entry for one pipeline run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	State       Stage
	FailedStage Stage
	Error       string
	InputPath   string
	Gene        string
	Accession   string
	Genus       string
	RecordCount int
	FailedCount int
	RunDir      string
}

// Duration returns how long the run took, or zero while it is running.
func (r RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run reached StageDone.
func (r RunRecord) Succeeded() bool {
	return r.State == StageDone
}
