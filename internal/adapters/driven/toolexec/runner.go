// Package toolexec runs external command-line tools as subprocesses.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/logger"
)

// maxCapture bounds how much of each output stream is kept.
const maxCapture = 64 << 10

// Ensure Runner implements the interface.
var _ driven.ToolRunner = (*Runner)(nil)

// Runner executes tools synchronously with a discrete argument vector.
type Runner struct {
	// WaitDelay bounds how long Run waits for output after cancellation.
	WaitDelay time.Duration
}

// NewRunner creates a runner.
func NewRunner() *Runner {
	return &Runner{WaitDelay: 5 * time.Second}
}

// Run starts the tool, waits for it and captures its output.
// A missing executable or a nonzero exit yields a *domain.ToolError.
func (r *Runner) Run(ctx context.Context, inv domain.ToolInvocation) (*domain.ToolResult, error) {
	path, err := exec.LookPath(inv.Path)
	if err != nil {
		return nil, &domain.ToolError{
			Tool:     inv.Tool,
			Path:     inv.Path,
			Args:     inv.Args,
			ExitCode: -1,
			Err:      err,
		}
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = r.WaitDelay

	stdout := &limitedBuffer{max: maxCapture}
	stderr := &limitedBuffer{max: maxCapture}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err = cmd.Run()
	res := &domain.ToolResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Elapsed:  time.Since(start),
	}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	toolErr := &domain.ToolError{
		Tool:     inv.Tool,
		Path:     inv.Path,
		Args:     inv.Args,
		ExitCode: res.ExitCode,
		Stderr:   res.Stderr,
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		toolErr.ExitCode = -1
		toolErr.Err = fmt.Errorf("start %s: %w", inv.Path, err)
	}
	logger.Debug("%s exited with %d after %s", inv.Tool, res.ExitCode, res.Elapsed)
	return res, toolErr
}

// limitedBuffer keeps the first max bytes written and discards the rest.
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[output truncated]"
	}
	return b.buf.String()
}
