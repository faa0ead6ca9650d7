package domain

import (
	"strings"
	"time"
)

// Names of the external tools.
const (
	ToolAligner     = "aligner"
	ToolTreeBuilder = "tree-builder"
)

// ToolInvocation is one external command as an argument vector.
// Arguments are never joined into a shell string.
type ToolInvocation struct {
	// Tool is the logical tool name used in errors and progress.
	Tool string

	// Path is the executable.
	Path string

	// Args are passed to the executable verbatim.
	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string
}

// CommandLine renders the invocation for logs. It is not shell-safe.
func (i ToolInvocation) CommandLine() string {
	return strings.Join(append([]string{i.Path}, i.Args...), " ")
}

// ToolResult describes a finished tool run.
type ToolResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
}
