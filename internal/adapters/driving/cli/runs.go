package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/meows-bio/meows/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run; a unique ID prefix is enough",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsForgetCmd = &cobra.Command{
	Use:   "forget <run-id>",
	Short: "Remove a run from the history; files on disk are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsForget,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsForgetCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	runs, err := runHistory.List(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATE\tGENE\tGENUS\tRECORDS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			shortID(r.ID), r.StartedAt.Local().Format(time.DateTime), runState(r), r.Gene, dash(r.Genus), r.RecordCount)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	r, err := runHistory.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run:        %s\n", r.ID)
	cmd.Printf("State:      %s\n", runState(*r))
	cmd.Printf("Started:    %s\n", r.StartedAt.Local().Format(time.DateTime))
	if d := r.Duration(); d > 0 {
		cmd.Printf("Duration:   %s\n", d.Round(time.Second))
	}
	cmd.Printf("Input:      %s\n", r.InputPath)
	cmd.Printf("Gene:       %s\n", r.Gene)
	cmd.Printf("Accession:  %s\n", dash(r.Accession))
	cmd.Printf("Genus:      %s\n", dash(r.Genus))
	cmd.Printf("Records:    %d fetched, %d failed\n", r.RecordCount, r.FailedCount)
	cmd.Printf("Directory:  %s\n", r.RunDir)
	if r.Error != "" {
		cmd.Printf("Error:      %s\n", r.Error)
	}
	return nil
}

func runRunsForget(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}
	if err := runHistory.Forget(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to forget run: %w", err)
	}
	cmd.Printf("Forgot run %s\n", args[0])
	return nil
}

func runState(r domain.RunRecord) string {
	if r.State == domain.StageFailed && r.FailedStage != "" {
		return fmt.Sprintf("failed (%s)", r.FailedStage)
	}
	return r.State.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
