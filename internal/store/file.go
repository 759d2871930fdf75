package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// VersionFileName is written into each module's build directory.
const VersionFileName = ".garden-version"

// FileStore keeps build versions under <root>/.garden/build/<module>/.garden-version.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ VersionStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at the project's metadata directory.
func NewFileStore(projectRoot string) *FileStore {
	return &FileStore{dir: filepath.Join(projectRoot, ".garden", "build")}
}

func (s *FileStore) path(moduleName string) string {
	return filepath.Join(s.dir, moduleName, VersionFileName)
}

func (s *FileStore) GetBuildVersion(ctx context.Context, moduleName string) (BuildRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return BuildRecord{}, false, err
	}

	path := s.path(moduleName)
	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return BuildRecord{}, false, nil
		}
		return BuildRecord{}, false, fmt.Errorf("failed to read build version of %s: %w", moduleName, err)
	}

	rec := BuildRecord{Version: strings.TrimSpace(string(data))}
	if info, err := os.Stat(path); err == nil {
		rec.BuiltAt = info.ModTime()
	}
	return rec, rec.Version != "", nil
}

func (s *FileStore) SetBuildVersion(ctx context.Context, moduleName string, rec BuildRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(moduleName)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create build directory for %s: %w", moduleName, err)
	}
	if err := os.WriteFile(path, []byte(rec.Version), 0o644); err != nil {
		return fmt.Errorf("failed to write build version of %s: %w", moduleName, err)
	}
	if !rec.BuiltAt.IsZero() {
		_ = os.Chtimes(path, rec.BuiltAt, rec.BuiltAt)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
