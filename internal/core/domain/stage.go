package domain

// Stage is a state of the pipeline state machine.
type Stage string

// Pipeline stages in execution order, followed by the terminal states.
const (
	StageLoad         Stage = "load"
	StageSearch       Stage = "search"
	StageResolveGenus Stage = "resolve_genus"
	StageRetrieve     Stage = "retrieve"
	StageWrite        Stage = "write"
	StageAlign        Stage = "align"
	StageInfer        Stage = "infer"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

var stageOrder = []Stage{
	StageLoad,
	StageSearch,
	StageResolveGenus,
	StageRetrieve,
	StageWrite,
	StageAlign,
	StageInfer,
}

// Stages returns the working stages in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// IsTerminal reports whether the stage ends a run.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	if s.IsTerminal() {
		return true
	}
	return s.index() >= 0
}

// Next returns the stage that follows s. The last working stage is followed
// by StageDone; terminal stages have no successor and return themselves.
func (s Stage) Next() Stage {
	if s.IsTerminal() {
		return s
	}
	i := s.index()
	if i < 0 {
		return StageFailed
	}
	if i == len(stageOrder)-1 {
		return StageDone
	}
	return stageOrder[i+1]
}

// CanTransition reports whether the machine may move from s to next.
// Working stages advance one step at a time or fail; terminal stages
// never move.
func (s Stage) CanTransition(next Stage) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StageFailed {
		return true
	}
	return s.Next() == next
}

// Description returns a human-readable label for progress output.
func (s Stage) Description() string {
	switch s {
	case StageLoad:
		return "Loading query sequence"
	case StageSearch:
		return "Searching for the closest match"
	case StageResolveGenus:
		return "Resolving genus"
	case StageRetrieve:
		return "Retrieving related sequences"
	case StageWrite:
		return "Writing sequences"
	case StageAlign:
		return "Aligning sequences"
	case StageInfer:
		return "Building maximum-likelihood tree"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

func (s Stage) index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}
