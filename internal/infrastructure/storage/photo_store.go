// Package storage keeps uploaded profile photos on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that would escape the photo directory.
var ErrInvalidName = errors.New("invalid photo name")

// PhotoStore implements ports.PhotoStore rooted at a single directory.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates dir if needed and returns a store rooted there.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &PhotoStore{dir: dir}, nil
}

// Dir returns the root directory, used to serve photos statically.
func (s *PhotoStore) Dir() string {
	return s.dir
}

// Save writes r under name. It never overwrites: an existing file yields an
// error wrapping fs.ErrExist. A partially written file is removed.
func (s *PhotoStore) Save(_ context.Context, name string, r io.Reader) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("save photo %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write photo %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close photo %s: %w", name, err)
	}
	return nil
}

// Remove deletes name. A missing file is not an error.
func (s *PhotoStore) Remove(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove photo %s: %w", name, err)
	}
	return nil
}

func (s *PhotoStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}
