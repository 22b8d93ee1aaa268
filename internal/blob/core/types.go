// Package core defines the blob storage abstraction shared by the blob
// drivers and the blob-backed persistent store.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs"
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // User metadata (small, flat key-value)
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store provides a thin S3-like abstraction. Put is create-only; callers
// replacing a blob delete it first.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns an error wrapping ErrNotExist when key is missing.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns an error wrapping ErrNotExist when key is missing.
	Head(ctx context.Context, key string) (Info, error)
	// Delete returns (false, nil) when key is missing.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs whose key has prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

var (
	// ErrNotExist is wrapped by Get and Head when a key is missing.
	ErrNotExist = errors.New("blobstore: blob does not exist")
	// ErrExists is wrapped by Put when a key is already taken.
	ErrExists = errors.New("blobstore: blob already exists")
)

// CloneMetadata copies a metadata map, keeping nil as nil.
func CloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
