// Package storage is the object store behind the CSV import pipeline.
//
// Two drivers are available:
//   - "s3"    S3-compatible object storage (AWS S3, LocalStack, MinIO)
//   - "local" local filesystem, for development and tests
//
// Boot once, then resolve the import disk:
//
//	storage.Connect(ctx)
//	disk, err := storage.Use(config.StorageDisk())
//	url, _ := disk.PresignPut(ctx, "uploaded/products.csv", "text/csv", 5*time.Minute)
package storage

import (
	"context"
	"io"
	"time"
)

// Disk is the driver interface the import pipeline needs.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// GetStream returns a ReadCloser for the object. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) bool

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes an object. Returns nil if it did not exist.
	Delete(ctx context.Context, path string) error

	// Copy creates a copy of src at dst.
	Copy(ctx context.Context, src, dst string) error

	// Move copies src to dst, then deletes src.
	Move(ctx context.Context, src, dst string) error

	// PresignPut returns a URL a client can PUT the object to without
	// credentials, valid for ttl.
	PresignPut(ctx context.Context, path, contentType string, ttl time.Duration) (string, error)
}
