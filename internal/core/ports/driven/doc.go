// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a pipeline run:
//
//   - SimilaritySearcher: Remote nucleotide similarity search (BLAST)
//   - RecordDatabase: Remote record fetch and search (Entrez)
//   - SequenceCodec: Multi-record sequence file format (FASTA)
//   - ArtifactStore: The per-run output directory
//   - ToolRunner: External command execution
//   - Pacer: Inter-request delay for bulk fetches
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline runs without them:
//
//   - RunStore: Run history persistence
//   - RunObserver: Progress and metrics listeners
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
