package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// AlignerArgs returns the aligner argument vector.
func AlignerArgs(input, output string) []string {
	return []string{"-in", input, "-out", output}
}

// TreeArgs returns the tree-builder argument vector for a rapid bootstrap
// analysis followed by a maximum-likelihood search.
func TreeArgs(alignment string, t domain.TreeSettings) []string {
	return []string{
		"-T", strconv.Itoa(t.Threads),
		"-f", t.Algorithm,
		"-s", alignment,
		"-m", t.Model,
		"-p", strconv.FormatInt(t.ParsimonySeed, 10),
		"-x", strconv.FormatInt(t.BootstrapSeed, 10),
		"-N", strconv.Itoa(t.Bootstraps),
		"-n", t.RunName,
	}
}

// ToolStage runs the external aligner and tree builder.
type ToolStage struct {
	runner driven.ToolRunner
}

// NewToolStage creates a tool stage using runner.
func NewToolStage(runner driven.ToolRunner) *ToolStage {
	return &ToolStage{runner: runner}
}

// Align runs the aligner on layout's sequence file.
func (s *ToolStage) Align(ctx context.Context, aligner string, layout domain.RunLayout) error {
	inv := domain.ToolInvocation{
		Tool: domain.ToolAligner,
		Path: aligner,
		Args: AlignerArgs(layout.Sequences(), layout.Alignment()),
		Dir:  layout.Dir,
	}
	return s.run(ctx, inv)
}

// BuildTree runs the tree builder on layout's alignment.
func (s *ToolStage) BuildTree(ctx context.Context, builder string, tree domain.TreeSettings, layout domain.RunLayout) error {
	inv := domain.ToolInvocation{
		Tool: domain.ToolTreeBuilder,
		Path: builder,
		Args: TreeArgs(layout.Alignment(), tree),
		Dir:  layout.Dir,
	}
	return s.run(ctx, inv)
}

func (s *ToolStage) run(ctx context.Context, inv domain.ToolInvocation) error {
	logger.Info("Running %s", inv.CommandLine())

	res, err := s.runner.Run(ctx, inv)
	if err != nil {
		var toolErr *domain.ToolError
		if errors.As(err, &toolErr) || ctx.Err() != nil {
			return err
		}
		return &domain.ToolError{
			Tool:     inv.Tool,
			Path:     inv.Path,
			Args:     inv.Args,
			ExitCode: -1,
			Err:      err,
		}
	}

	if res != nil {
		logger.Debug("%s finished in %s", inv.Tool, res.Elapsed)
	}
	return nil
}
