package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pipeline errors. Each kind maps to a distinct process exit code.
var (
	// ErrInvalidInput indicates malformed arguments or configuration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInputFormat indicates the query file does not hold exactly one
	// parsable sequence record.
	ErrInputFormat = errors.New("input format error")

	// ErrNoHitFound indicates the similarity search returned no hits.
	ErrNoHitFound = errors.New("no hit found")

	// ErrService indicates the similarity search service failed or returned
	// a malformed report.
	ErrService = errors.New("search service error")

	// ErrRecordNotFound indicates a database record could not be fetched or
	// lacks the organism annotation.
	ErrRecordNotFound = errors.New("record not found")

	// ErrQuery indicates the database search returned malformed results.
	ErrQuery = errors.New("query error")

	// ErrFetch indicates a single related record could not be fetched.
	ErrFetch = errors.New("fetch error")

	// ErrNoRelatedSequences indicates retrieval produced fewer records than
	// the configured minimum.
	ErrNoRelatedSequences = errors.New("no related sequences")

	// ErrWrite indicates an artifact could not be written.
	ErrWrite = errors.New("write error")

	// ErrArtifactExists indicates an output file is already present and
	// overwriting was not requested.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrExternalTool indicates an external tool failed.
	ErrExternalTool = errors.New("external tool error")

	// ErrNotFound indicates a requested history entry does not exist.
	ErrNotFound = errors.New("not found")
)

// ToolError describes a failed external tool invocation.
type ToolError struct {
	Tool     string
	Path     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Tool)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " with exit status %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		fmt.Fprintf(&b, "\n%s", stderr)
	}
	return b.String()
}

// Unwrap lets errors.Is match both ErrExternalTool and the spawn cause.
func (e *ToolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrExternalTool, e.Err}
	}
	return []error{ErrExternalTool}
}

// FetchError records the failure to fetch one related record.
type FetchError struct {
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.ID, e.Err)
}

// Unwrap lets errors.Is match both ErrFetch and the cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetch, e.Err}
}

// StageError ties a failure to the pipeline stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, or StageFailed when err
// does not carry one.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return StageFailed
}

// Exit codes returned by the meows command.
const (
	ExitOK                 = 0
	ExitUnknown            = 1
	ExitUsage              = 2
	ExitInputFormat        = 3
	ExitNoHit              = 4
	ExitService            = 5
	ExitRecordNotFound     = 6
	ExitQuery              = 7
	ExitFetch              = 8
	ExitNoRelatedSequences = 9
	ExitWrite              = 10
	ExitExternalTool       = 11
	ExitCancelled          = 130
)

// ExitCode maps an error to the process exit code for its kind.
// A FetchError maps to ExitFetch whatever its cause.
func ExitCode(err error) int {
	var fetchErr *FetchError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &fetchErr):
		return ExitFetch
	case errors.Is(err, ErrInvalidInput):
		return ExitUsage
	case errors.Is(err, ErrInputFormat):
		return ExitInputFormat
	case errors.Is(err, ErrNoHitFound):
		return ExitNoHit
	case errors.Is(err, ErrService):
		return ExitService
	case errors.Is(err, ErrRecordNotFound):
		return ExitRecordNotFound
	case errors.Is(err, ErrQuery):
		return ExitQuery
	case errors.Is(err, ErrNoRelatedSequences):
		return ExitNoRelatedSequences
	case errors.Is(err, ErrFetch):
		return ExitFetch
	case errors.Is(err, ErrWrite), errors.Is(err, ErrArtifactExists):
		return ExitWrite
	case errors.Is(err, ErrExternalTool):
		return ExitExternalTool
	default:
		return ExitUnknown
	}
}
