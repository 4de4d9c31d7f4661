// Package storage is the blob store behind image uploads.
//
// Two drivers are available:
//   - "local"  local filesystem, served by the HTTP kernel under /storage
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disk, _ := storage.Open(ctx, storage.FromConfig())
//	_ = disk.PutStream(ctx, "images/3f2a.jpg", file)
//	url := disk.URL("images/3f2a.jpg")
package storage

import (
	"context"
	"io"
)

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
