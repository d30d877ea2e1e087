// Package storage provides the durable blob stores the portfolio survives
// reloads through: a single JSON file or a SQLite database, both local and
// single-user. Each store can watch for changes made by other processes so
// that two running instances converge on the same snapshot.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const defaultPollInterval = 2 * time.Second

// FileStore persists the portfolio blob as a single file on disk.
type FileStore struct {
	path         string
	pollInterval time.Duration
}

// NewFileStore creates a store writing to path. Parent directories are
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, pollInterval: defaultPollInterval}
}

// Read implements domain.BlobStore.
func (s *FileStore) Read(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read portfolio file %q: %w", s.path, err)
	}
	return data, true, nil
}

// Write implements domain.BlobStore. The payload is written to a temp file
// and renamed into place so a crash mid-write never leaves a truncated blob.
func (s *FileStore) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create portfolio dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp portfolio file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write portfolio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close portfolio file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace portfolio file %q: %w", s.path, err)
	}
	return nil
}

// Watch implements domain.BlobStore by polling the file's modification time
// and size. The filesystem has no portable change-event API, and at a
// single-user scale a short polling interval is indistinguishable from one.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	lastMod, lastSize := s.stat()

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mod, size := s.stat()
				if mod.Equal(lastMod) && size == lastSize {
					continue
				}
				lastMod, lastSize = mod, size
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func (s *FileStore) stat() (time.Time, int64) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, -1
	}
	return info.ModTime(), info.Size()
}
