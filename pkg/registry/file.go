package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
)

// FileBackend stores each key in its own file under a directory. Writes go to
// a temporary file that is renamed over the target.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".reg")
}

// GetItem implements Backend.
func (f *FileBackend) GetItem(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// SetItem implements Backend. A full disk is reported as ErrQuotaExceeded.
func (f *FileBackend) SetItem(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return wrapDiskError(key, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return wrapDiskError(key, err)
	}
	if err := tmp.Close(); err != nil {
		return wrapDiskError(key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// RemoveItem implements Backend.
func (f *FileBackend) RemoveItem(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (f *FileBackend) Close() error { return nil }

func wrapDiskError(key string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("write %s: %w: %w", key, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("write %s: %w", key, err)
}
