package core

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

// FileStore is any service that can persist uploaded/generated artifacts
// (schedule PDFs, profile photos) and serve them back by their public path.
type FileStore interface {
	// Save stores the content under `name` (a path relative to the store root)
	// and returns the public path the file is retrievable at.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	// Open returns the content previously stored at the given public path.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the file at the given public path.
	// Deleting a non-existent file is not an error.
	Delete(ctx context.Context, path string) error
}
