package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default values for Settings.
const (
	DefaultBlastURL       = "https://blast.ncbi.nlm.nih.gov/Blast.cgi"
	DefaultEutilsURL      = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultToolName       = "meows"
	DefaultBlastProgram   = "blastn"
	DefaultBlastDatabase  = "nt"
	DefaultEntrezDatabase = "nucleotide"
	DefaultHitTitleField  = 1
	DefaultPollInterval   = 10 * time.Second
	DefaultSearchTimeout  = 20 * time.Minute

	DefaultFetchInterval = time.Second
	DefaultMaxRecords    = 20
	DefaultMinRecords    = 1

	DefaultTreeModel      = "GTRGAMMA"
	DefaultTreeAlgorithm  = "a"
	DefaultTreeThreads    = 2
	DefaultBootstraps     = 200
	DefaultParsimonySeed  = 12345
	DefaultBootstrapSeed  = 12345
	DefaultTreeRunName    = "raxml_analysis"
	DefaultOutputRootName = "meows-runs"
)

// NCBISettings configures the remote NCBI services.
type NCBISettings struct {
	// Email is the contact address attached to every request.
	Email string

	// APIKey raises the E-utilities rate limit when set.
	APIKey string

	// Tool identifies this program to NCBI.
	Tool string

	// BlastURL is the BLAST URL API endpoint.
	BlastURL string

	// EutilsURL is the base URL of the E-utilities.
	EutilsURL string

	// BlastProgram is the BLAST program (nucleotide vs nucleotide).
	BlastProgram string

	// BlastDatabase is the BLAST database to search.
	BlastDatabase string

	// Database is the Entrez database for fetch and search.
	Database string

	// HitTitleField is the pipe-delimited title field holding the accession.
	HitTitleField int

	// PollInterval is the delay between BLAST status checks.
	PollInterval time.Duration

	// SearchTimeout bounds the whole BLAST search.
	SearchTimeout time.Duration
}

// RetrievalSettings configures the related-sequence retriever.
type RetrievalSettings struct {
	// Interval is the minimum delay between consecutive record fetches.
	Interval time.Duration

	// MaxRecords caps the identifiers requested from the database search.
	MaxRecords int

	// MinRecords is the fewest fetched records the run may continue with.
	MinRecords int

	// Strict aborts retrieval on the first failed fetch.
	Strict bool
}

// ToolSettings locates the external executables.
type ToolSettings struct {
	AlignerPath     string
	TreeBuilderPath string
}

// TreeSettings holds the fixed tree-inference parameters.
type TreeSettings struct {
	Model         string
	Algorithm     string
	Threads       int
	Bootstraps    int
	ParsimonySeed int64
	BootstrapSeed int64
	RunName       string
}

// OutputSettings controls where run artifacts go.
type OutputSettings struct {
	// Root is the directory under which per-run directories are created.
	Root string

	// Dir is an explicit run directory. When empty a fresh directory is
	// created under Root for every run.
	Dir string

	// Force allows overwriting existing artifacts in an explicit run dir.
	Force bool

	// Metrics enables the per-run Prometheus textfile.
	Metrics bool

	// History enables the run history database.
	History bool
}

// Settings is the complete configuration of one pipeline run.
type Settings struct {
	NCBI      NCBISettings
	Retrieval RetrievalSettings
	Tools     ToolSettings
	Tree      TreeSettings
	Output    OutputSettings
}

// DefaultSettings returns settings with every default applied.
// Email and tool paths have no default and must be supplied.
func DefaultSettings() Settings {
	return Settings{
		NCBI: NCBISettings{
			Tool:          DefaultToolName,
			BlastURL:      DefaultBlastURL,
			EutilsURL:     DefaultEutilsURL,
			BlastProgram:  DefaultBlastProgram,
			BlastDatabase: DefaultBlastDatabase,
			Database:      DefaultEntrezDatabase,
			HitTitleField: DefaultHitTitleField,
			PollInterval:  DefaultPollInterval,
			SearchTimeout: DefaultSearchTimeout,
		},
		Retrieval: RetrievalSettings{
			Interval:   DefaultFetchInterval,
			MaxRecords: DefaultMaxRecords,
			MinRecords: DefaultMinRecords,
		},
		Tree: TreeSettings{
			Model:         DefaultTreeModel,
			Algorithm:     DefaultTreeAlgorithm,
			Threads:       DefaultTreeThreads,
			Bootstraps:    DefaultBootstraps,
			ParsimonySeed: DefaultParsimonySeed,
			BootstrapSeed: DefaultBootstrapSeed,
			RunName:       DefaultTreeRunName,
		},
		Output: OutputSettings{
			Root:    DefaultOutputRootName,
			Metrics: true,
			History: true,
		},
	}
}

// Validate reports every missing or out-of-range setting.
// The returned error wraps ErrInvalidInput.
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.NCBI.Email) == "" {
		problems = append(problems, "contact email is required")
	} else if !strings.Contains(s.NCBI.Email, "@") {
		problems = append(problems, fmt.Sprintf("contact email %q is not an address", s.NCBI.Email))
	}
	if s.Tools.AlignerPath == "" {
		problems = append(problems, "aligner path is required")
	}
	if s.Tools.TreeBuilderPath == "" {
		problems = append(problems, "tree builder path is required")
	}
	if s.NCBI.HitTitleField < 0 {
		problems = append(problems, "hit title field must not be negative")
	}
	if s.NCBI.PollInterval <= 0 {
		problems = append(problems, "poll interval must be positive")
	}
	if s.Retrieval.Interval < 0 {
		problems = append(problems, "fetch interval must not be negative")
	}
	if s.Retrieval.MaxRecords <= 0 {
		problems = append(problems, "max records must be positive")
	}
	if s.Retrieval.MinRecords < 0 {
		problems = append(problems, "min records must not be negative")
	}
	if s.Tree.Threads < 1 {
		problems = append(problems, "tree threads must be at least 1")
	}
	if s.Tree.Bootstraps < 1 {
		problems = append(problems, "bootstrap replicates must be at least 1")
	}
	if s.Tree.RunName == "" || strings.ContainsAny(s.Tree.RunName, `/\ `) {
		problems = append(problems, fmt.Sprintf("tree run name %q is not a plain name", s.Tree.RunName))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, errors.New(strings.Join(problems, "; ")))
}
