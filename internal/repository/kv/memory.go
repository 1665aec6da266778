package kv

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Jyo1001/sndp-loan-portal-demo/internal/core/port"
	"github.com/Jyo1001/sndp-loan-portal-demo/internal/repository"
)

// MemoryStorage implements port.Storage with an in-process map. It is
// the default medium for single-client deployments and the deterministic
// fake used throughout the tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage constructs an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// Get returns the value stored under key or repository.ErrNotFound.
func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any prior value.
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// ScanPrefix returns all pairs whose key starts with prefix, ordered by key.
func (s *MemoryStorage) ScanPrefix(_ context.Context, prefix string) ([]port.KV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []port.KV
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, port.KV{Key: k, Value: v})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len reports the number of stored keys.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
