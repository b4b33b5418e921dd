package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Constants
const (
	FileSuffix      = ".json"
	BackupSuffix    = ".backup"
	TmpSuffix       = ".tmp"
	FilePermissions = 0644
	DirPermissions  = 0755
)

// FileStore keeps one JSON file per profile in a directory
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(profile string) string {
	return filepath.Join(s.dir, profile+FileSuffix)
}

// Load reads the profile's entry, falling back to the backup left by an interrupted save
func (s *FileStore) Load(ctx context.Context, profile string) ([]byte, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.path(profile)
	data, err := os.ReadFile(file)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	data, err = os.ReadFile(file + BackupSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the entry with backup: the old file becomes .backup, the new one
// is written to a temp file and renamed into place.
func (s *FileStore) Save(ctx context.Context, profile string, data []byte) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.path(profile)

	// Create backup
	if _, err := os.Stat(file); err == nil {
		if err := os.Rename(file, file+BackupSuffix); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	// Write to temp file first
	tmpFile := file + TmpSuffix
	if err := os.WriteFile(tmpFile, data, FilePermissions); err != nil {
		return err
	}

	return os.Rename(tmpFile, file)
}

// Delete removes the entry and its backup
func (s *FileStore) Delete(ctx context.Context, profile string) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.path(profile)
	found := false
	for _, f := range []string{file, file + BackupSuffix} {
		err := os.Remove(f)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}
