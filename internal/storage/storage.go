// Package storage contains the file storage backends used by the file service:
// a flat local directory (default) and an S3-compatible bucket.
// Keys are bare file names; nested paths are never accepted.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no regular file exists under a key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that could escape the storage root.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is a flat key/value file store.
// Implementations must be safe for concurrent use; no locking is done across calls.
type Storage interface {
	// Put writes an object under key, replacing any existing object with that key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get opens an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without opening the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List returns the keys of all objects at the root, in no particular order.
	List(ctx context.Context) ([]string, error)
	// Delete removes an object by key. Missing objects yield ErrNotFound.
	Delete(ctx context.Context, key string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// ValidateKey rejects empty keys, path separators, dot segments and NUL bytes.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return ErrInvalidKey
	case strings.ContainsAny(key, "/\\\x00"):
		return ErrInvalidKey
	}
	return nil
}
