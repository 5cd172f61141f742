package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one file per asset in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns $XDG_DATA_HOME/ringtower/assets, falling back to
// ~/.local/share/ringtower/assets.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "ringtower", "assets"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", storeError(err, "get home dir")
	}
	return filepath.Join(home, ".local", "share", "ringtower", "assets"), nil
}

// NewFileStore creates a file store rooted at baseDir, creating the
// directory if needed. An empty baseDir means [DefaultDir].
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, storeError(err, "create asset dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the directory holding the assets.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) assetPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

func (s *FileStore) Put(_ context.Context, name string, buf []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".put-*")
	if err != nil {
		return storeError(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return storeError(err, "write asset %s", name)
	}
	if err := tmp.Close(); err != nil {
		return storeError(err, "write asset %s", name)
	}
	if err := os.Rename(tmp.Name(), s.assetPath(name)); err != nil {
		return storeError(err, "write asset %s", name)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.assetPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, storeError(err, "read asset %s", name)
	}
	return data, nil
}

func (s *FileStore) List(_ context.Context) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, storeError(err, "read asset dir")
	}
	var out []Asset
	for _, entry := range entries {
		if entry.IsDir() || ValidateName(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Asset{Name: entry.Name(), Size: int(info.Size()), Modified: info.ModTime()})
	}
	sortAssets(out)
	return out, nil
}

func (s *FileStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.assetPath(name)); err != nil && !os.IsNotExist(err) {
		return storeError(err, "remove asset %s", name)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
