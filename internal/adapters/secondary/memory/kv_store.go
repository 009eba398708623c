package memory

import (
	"context"
	"sync"

	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/ports"
)

// KVStore is a process-local key-value backend, used in tests and for throwaway runs.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ ports.KeyValueStore = (*KVStore)(nil)

// NewKVStore creates an empty in-memory backend.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, apperrors.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// SetMany stores every entry under a single lock.
func (s *KVStore) SetMany(_ context.Context, entries ...ports.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (s *KVStore) Ping(context.Context) error { return nil }

func (s *KVStore) Close() error { return nil }
