// Package storage defines the interface for blob storage operations.
// Swap implementations by changing the concrete type injected at startup:
// the local driver keeps files on disk, the MinIO implementation works with
// any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// Storage is the interface for uploading, retrieving, and removing blobs.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download returns a reader for the blob stored under key.
	// Returns ErrNotFound when no such blob exists.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob identified by key. Missing blobs are ignored.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
