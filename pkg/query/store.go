package query

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Record is a persisted query result.
type Record struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store is a second-level cache for successful query results. Keys are flat
// strings in which the key of a prefix is a string prefix of every key under it.
type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	Set(ctx context.Context, key string, rec Record) error
	// DeletePrefix removes every record whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// InMemoryStore is a thread-safe, map-backed Store.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]Record)}
}

// Get returns the record for key or ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Set stores rec under key.
func (s *InMemoryStore) Set(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = rec
	return nil
}

// DeletePrefix removes every record under prefix.
func (s *InMemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
