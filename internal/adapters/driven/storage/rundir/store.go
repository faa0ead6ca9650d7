// Package rundir stores the artifacts of one pipeline run in a directory.
package rundir

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Store is a run directory on the local filesystem.
type Store struct {
	dir   string
	force bool
}

// NewName returns a run directory name of the form
// "20060102-150405-<first 8 hex digits of runID>".
func NewName(at time.Time, runID string) string {
	short := strings.ReplaceAll(runID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		short = strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}
	return at.Format("20060102-150405") + "-" + short
}

// Create makes a fresh run directory named for runID under root.
func Create(root string, at time.Time, runID string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: output root is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve output root: %w", domain.ErrWrite, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output root: %w", domain.ErrWrite, err)
	}

	dir := filepath.Join(abs, NewName(at, runID))
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: run directory %s", domain.ErrArtifactExists, dir)
		}
		return nil, fmt.Errorf("%w: create run directory: %w", domain.ErrWrite, err)
	}
	return &Store{dir: dir}, nil
}

// Open uses an explicit directory, creating it when missing. Existing
// artifacts are only overwritten when force is set.
func Open(dir string, force bool) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: run directory is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve run directory: %w", domain.ErrWrite, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create run directory: %w", domain.ErrWrite, err)
	}
	return &Store{dir: abs, force: force}, nil
}

// Dir returns the run directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Create opens name for writing.
func (s *Store) Create(name string) (io.WriteCloser, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !s.force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	fh, err := os.OpenFile(s.Path(name), flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactExists, s.Path(name))
		}
		return nil, err
	}
	return fh, nil
}

// WriteFile writes data to name.
func (s *Store) WriteFile(name string, data []byte) error {
	fh, err := s.Create(name)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Exists reports whether name is present in the run directory.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// EnsureAbsent fails if any of names exists and overwriting is not allowed.
func (s *Store) EnsureAbsent(names ...string) error {
	if s.force {
		return nil
	}
	var present []string
	for _, name := range names {
		if s.Exists(name) {
			present = append(present, name)
		}
	}
	if len(present) > 0 {
		return fmt.Errorf("%w in %s: %s (use --force to overwrite)",
			domain.ErrArtifactExists, s.dir, strings.Join(present, ", "))
	}
	return nil
}

func validName(name string) error {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%w: artifact name %q must be a plain file name", domain.ErrInvalidInput, name)
	}
	return nil
}
