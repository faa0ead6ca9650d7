package driven

import "io"

// ArtifactStore is the directory that receives one run's files.
// Names are relative to the store root.
type ArtifactStore interface {
	// Dir returns the absolute root directory.
	Dir() string

	// Path returns the absolute path for name.
	Path(name string) string

	// Create opens name for writing. Unless the store allows overwriting,
	// an existing file fails with domain.ErrArtifactExists.
	Create(name string) (io.WriteCloser, error)

	// WriteFile writes data to name with the same overwrite rule as Create.
	WriteFile(name string, data []byte) error

	// Exists reports whether name is present.
	Exists(name string) bool

	// EnsureAbsent fails with domain.ErrArtifactExists if any of the
	// names exists and the store does not allow overwriting.
	EnsureAbsent(names ...string) error
}
