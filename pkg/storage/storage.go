// Package storage defines the FileStore interface used to persist generated
// media. It abstracts the backend so the materializer can write to local
// disk and mirror to an S3-compatible object store through the same calls.
package storage

import (
	"context"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing. Parent directories are
	// created automatically.
	//
	// Nothing is visible at path until Close returns nil. Abort discards
	// everything written so far.
	Write(ctx context.Context, path string) (Writer, error)

	// Delete removes the named file.
	// If the file does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Writer is an all-or-nothing file writer.
type Writer interface {
	io.Writer

	// Close commits the written data to its final path.
	Close() error

	// Abort discards the data. It is safe to call after Close, in which
	// case it does nothing.
	Abort() error
}
