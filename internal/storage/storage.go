package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tiliavir/trackmytime/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Collection is the CRUD surface of one entity type.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, v T) error
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
}

// Repository gives access to every stored collection.
type Repository interface {
	Entries() Collection[model.Entry]
	Projects() Collection[model.Project]
	Tags() Collection[model.Tag]
	Close() error
}

// DefaultBaseDir returns the root data directory (~/.tmt).
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tmt"), nil
}

// Open opens the repository stored under base with the given backend.
func Open(backend, base string) (Repository, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(base), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(base, "tmt.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// FileStore keeps entries in daily JSON files and projects and tags in
// one JSON file each, all below Base.
type FileStore struct {
	Base string

	entries  *dayFileEntries
	projects *catalogFile[model.Project]
	tags     *catalogFile[model.Tag]
}

// NewFileStore returns a FileStore rooted at base. Nothing is created until
// the first write.
func NewFileStore(base string) *FileStore {
	return &FileStore{
		Base:     base,
		entries:  &dayFileEntries{base: filepath.Join(base, "entries")},
		projects: &catalogFile[model.Project]{path: filepath.Join(base, "projects.json"), kind: "project"},
		tags:     &catalogFile[model.Tag]{path: filepath.Join(base, "tags.json"), kind: "tag"},
	}
}

func (s *FileStore) Entries() Collection[model.Entry]    { return s.entries }
func (s *FileStore) Projects() Collection[model.Project] { return s.projects }
func (s *FileStore) Tags() Collection[model.Tag]         { return s.tags }
func (s *FileStore) Close() error                        { return nil }

// writeAtomic writes data to a temp file next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
