package driven

import (
	"time"

	"github.com/meows-bio/meows/internal/core/domain"
)

// RunObserver receives pipeline progress.
// Implementations must not block; they run on the pipeline goroutine.
type RunObserver interface {
	// StageStarted is called when the machine enters a working stage.
	StageStarted(stage domain.Stage)

	// StageFinished is called when a stage ends; err is nil on success.
	StageFinished(stage domain.Stage, elapsed time.Duration, err error)

	// Milestone reports a user-facing result produced by a stage.
	Milestone(stage domain.Stage, message string)
}
