package storage

import (
	"context"
	"io"
)

// FileStore stores receipt attachments by opaque name. Implementations must
// treat names as the only handle: callers never see paths or buckets.
type FileStore interface {
	// Store writes content and returns the generated object name.
	Store(ctx context.Context, originalName string, content io.Reader) (string, error)
	// Delete removes a stored object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the public URL for a stored object name.
	URL(name string) string
}
