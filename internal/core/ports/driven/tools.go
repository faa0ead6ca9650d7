package driven

import (
	"context"

	"github.com/meows-bio/meows/internal/core/domain"
)

// ToolRunner executes external commands.
type ToolRunner interface {
	// Run starts the command, blocks until it exits and returns its
	// captured output. A nonzero exit or a failed start returns a
	// *domain.ToolError alongside whatever result was captured.
	Run(ctx context.Context, inv domain.ToolInvocation) (*domain.ToolResult, error)
}
