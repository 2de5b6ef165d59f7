// Package storage provides the object-store connector used as the
// destination filesystem for ingested datasets.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the S3-compatible store the job writes into.
// Implementations include S3/MinIO and a local filesystem for testing.
type ObjectStorage interface {
	// Upload copies a local file to objectPath in the store.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download copies the object at objectPath to localPath.
	Download(ctx context.Context, objectPath, localPath string) error

	// Delete removes a single object. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists reports whether an object exists at objectPath.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// DeletePrefix removes every object under the given prefix. This is
	// the overwrite primitive: a dataset prefix is cleared before each
	// write so only the latest run's data remains readable.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
