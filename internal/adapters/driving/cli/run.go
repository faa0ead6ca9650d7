package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driving"
)

var runFlags struct {
	email       string
	apiKey      string
	input       string
	gene        string
	aligner     string
	treeBuilder string
	outputDir   string
	runDir      string
	force       bool
	strict      bool
	noHistory   bool
	noMetrics   bool
	interval    time.Duration
	minRecords  int
	maxRecords  int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Identify a sequence and infer the phylogeny of its genus",
	Long: `Runs the full pipeline for one query sequence:

  1. load the single-record FASTA file given by --input
  2. BLAST it against nt and take the accession of the top hit
  3. fetch that GenBank record and take the genus of its organism
  4. search GenBank for "<genus> AND <gene>" and fetch every match
  5. write the matches to all_blast_seqs.fasta
  6. align them with the aligner
  7. build a bootstrapped maximum-likelihood tree with the tree builder

Every run writes into its own directory under --output-dir unless --run-dir
names one explicitly. Flags override values from the config file.`,
	Example: `  meows run --email me@example.org --input query.fasta --gene 16S \
    --aligner /usr/local/bin/muscle --tree-builder /usr/local/bin/raxmlHPC`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.email, "email", "", "contact email sent to NCBI with every request")
	f.StringVar(&runFlags.apiKey, "api-key", "", "NCBI API key (raises the request rate limit)")
	f.StringVarP(&runFlags.input, "input", "i", "", "FASTA file holding exactly one query sequence")
	f.StringVarP(&runFlags.gene, "gene", "g", "", "gene name used to select related sequences")
	f.StringVar(&runFlags.aligner, "aligner", "", "path to the MUSCLE-compatible aligner")
	f.StringVar(&runFlags.treeBuilder, "tree-builder", "", "path to the RAxML-compatible tree builder")
	f.StringVarP(&runFlags.outputDir, "output-dir", "o", "", "directory receiving one subdirectory per run")
	f.StringVar(&runFlags.runDir, "run-dir", "", "write artifacts into this exact directory")
	f.BoolVar(&runFlags.force, "force", false, "overwrite existing artifacts in --run-dir")
	f.BoolVar(&runFlags.strict, "strict", false, "abort on the first related record that cannot be fetched")
	f.BoolVar(&runFlags.noHistory, "no-history", false, "do not record the run in the history database")
	f.BoolVar(&runFlags.noMetrics, "no-metrics", false, "do not write metrics.prom into the run directory")
	f.DurationVar(&runFlags.interval, "interval", domain.DefaultFetchInterval, "minimum delay between record fetches")
	f.IntVar(&runFlags.minRecords, "min-records", domain.DefaultMinRecords, "fewest related records needed to continue")
	f.IntVar(&runFlags.maxRecords, "max-records", domain.DefaultMaxRecords, "most related records to request")
	f.SetNormalizeFunc(normalizeRunFlag)

	rootCmd.AddCommand(runCmd)
}

// normalizeRunFlag accepts the tool-specific flag names as aliases.
func normalizeRunFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "muscle-path", "muscle":
		name = "aligner"
	case "raxml-path", "raxml":
		name = "tree-builder"
	}
	return pflag.NormalizedName(name)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || pipelineFactory == nil {
		return errors.New("pipeline not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	applyRunFlags(cmd.Flags(), &settings)

	input := strings.TrimSpace(runFlags.input)
	if input == "" {
		return fmt.Errorf("%w: --input is required", domain.ErrInvalidInput)
	}
	gene := strings.TrimSpace(runFlags.gene)
	if gene == "" {
		return fmt.Errorf("%w: --gene is required", domain.ErrInvalidInput)
	}

	printer := NewPrinter(cmd.OutOrStdout())
	report, err := pipelineFactory(printer).Run(cmd.Context(), driving.RunRequest{
		InputPath: input,
		Gene:      gene,
		Settings:  settings,
	})
	printer.Summary(report, err)
	return err
}

// applyRunFlags overrides settings with every flag set on the command line.
func applyRunFlags(flags *pflag.FlagSet, s *domain.Settings) {
	if flags.Changed("email") {
		s.NCBI.Email = runFlags.email
	}
	if flags.Changed("api-key") {
		s.NCBI.APIKey = runFlags.apiKey
	}
	if flags.Changed("aligner") {
		s.Tools.AlignerPath = runFlags.aligner
	}
	if flags.Changed("tree-builder") {
		s.Tools.TreeBuilderPath = runFlags.treeBuilder
	}
	if flags.Changed("output-dir") {
		s.Output.Root = runFlags.outputDir
	}
	if flags.Changed("run-dir") {
		s.Output.Dir = runFlags.runDir
	}
	if flags.Changed("force") {
		s.Output.Force = runFlags.force
	}
	if flags.Changed("strict") {
		s.Retrieval.Strict = runFlags.strict
	}
	if flags.Changed("no-history") {
		s.Output.History = !runFlags.noHistory
	}
	if flags.Changed("no-metrics") {
		s.Output.Metrics = !runFlags.noMetrics
	}
	if flags.Changed("interval") {
		s.Retrieval.Interval = runFlags.interval
	}
	if flags.Changed("min-records") {
		s.Retrieval.MinRecords = runFlags.minRecords
	}
	if flags.Changed("max-records") {
		s.Retrieval.MaxRecords = runFlags.maxRecords
	}
}
