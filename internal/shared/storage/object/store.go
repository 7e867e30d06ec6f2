package object

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no artifact exists under the key.
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidKey is returned for keys that are not flat sanitized filenames.
var ErrInvalidKey = errors.New("invalid artifact key")

// ArtifactStore holds transient generated documents keyed by filename.
// Put replaces any existing artifact under the same key as a whole.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
