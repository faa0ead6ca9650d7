// Package cli implements the meows command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
	"github.com/meows-bio/meows/internal/logger"
)

var version = "dev"

// PipelineFactory builds a pipeline runner reporting to progress.
type PipelineFactory func(progress driven.RunObserver) driving.PipelineRunner

// Services are the core services the commands drive.
type Services struct {
	Settings driving.SettingsService
	History  driving.RunHistory
	Pipeline PipelineFactory
}

var (
	settingsService driving.SettingsService
	runHistory      driving.RunHistory
	pipelineFactory PipelineFactory

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meows",
	Short: "Identify a sequence and build a phylogeny of its genus",
	Long: `meows identifies an unknown nucleotide sequence with a BLAST search,
collects related sequences of the same genus and gene from GenBank, aligns
them and infers a maximum-likelihood tree with bootstrap support.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print detailed progress")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	})
}

// SetServices wires the commands to the core services.
func SetServices(s Services) {
	settingsService = s.Settings
	runHistory = s.History
	pipelineFactory = s.Pipeline
}

// SetVersion sets the version reported by "meows version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}
