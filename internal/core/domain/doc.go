// Package domain defines the core entities of the MEOWS pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SequenceRecord: One nucleotide sequence with optional annotations
//   - SearchHit: A ranked hit from the similarity search
//   - GenusLabel: The genus used to scope the related-sequence search
//   - Stage: A state of the pipeline state machine
//   - Settings: The explicit configuration passed to every component
//   - RunRecord: The history entry for one pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
