package memory

import (
	"context"
	"sync"

	"tailor-portal/internal/shared/storage/object"
	"tailor-portal/internal/shared/util"
)

// Store keeps artifacts in process memory and is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New constructs an empty Store.
func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !util.IsSafeFilename(key) {
		return object.ErrInvalidKey
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	s.items[key] = buf
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the artifact under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, object.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok, nil
}

var _ object.ArtifactStore = (*Store)(nil)
