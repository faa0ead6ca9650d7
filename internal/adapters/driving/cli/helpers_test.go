package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meows-bio/meows/internal/adapters/driven/storage/memory"
	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
	"github.com/meows-bio/meows/internal/core/services"
)

// fakePipeline records the request and replays a short progress script.
type fakePipeline struct {
	req      driving.RunRequest
	calls    int
	progress driven.RunObserver
	err      error
}

func (f *fakePipeline) Run(_ context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	f.calls++
	f.req = req

	f.progress.StageStarted(domain.StageLoad)
	f.progress.Milestone(domain.StageLoad, "Loaded query (10 bp)")
	f.progress.StageFinished(domain.StageLoad, 1500*time.Millisecond, f.err)

	report := &driving.RunReport{
		RunID:  "run-0001",
		State:  domain.StageDone,
		Layout: domain.NewRunLayout("/data/runs/20250101-000000-run00001", "raxml_analysis"),
	}
	if f.err != nil {
		report.State = domain.StageFailed
		report.FailedStage = domain.StageLoad
		return report, f.err
	}
	return report, nil
}

type testEnv struct {
	settings *services.SettingsService
	runs     *memory.RunStore
	pipeline *fakePipeline
}

// setupServices wires the commands to in-memory services for one test.
func setupServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		settings: services.NewSettingsService(memory.NewConfigStore()),
		runs:     memory.NewRunStore(),
		pipeline: &fakePipeline{},
	}
	SetServices(Services{
		Settings: env.settings,
		History:  services.NewHistoryService(env.runs),
		Pipeline: func(progress driven.RunObserver) driving.PipelineRunner {
			env.pipeline.progress = progress
			return env.pipeline
		},
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return env
}

// resetFlags restores every flag to its default so commands can be
// executed repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
