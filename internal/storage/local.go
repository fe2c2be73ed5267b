package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore keeps attachments on the local filesystem under a single
// directory, served statically by the router.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ FileStore = (*LocalStore)(nil)

// NewLocalStore creates the upload directory if needed and returns a store.
// baseURL is the public path prefix under which the directory is served.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Store writes content to a uuid-named file, preserving the original extension.
func (s *LocalStore) Store(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}

	return name, nil
}

// Delete removes a stored file. A missing file is treated as already deleted.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reject names that escape the upload directory.
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid object name %q", name)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored object name.
func (s *LocalStore) URL(name string) string {
	return s.baseURL + "/" + name
}
