// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a document does not exist for the given
// domain and key.
var ErrNotFound = errors.New("store: not found")

// Domain names the logical buckets of the on-disk layout.
type Domain string

const (
	DomainSettings   Domain = "settings"
	DomainLibrary    Domain = "library"
	DomainHighlights Domain = "highlights"
	DomainCovers     Domain = "covers"
)

// Store is the interface for persisting raw documents keyed by domain.
// Settings and the library index use the empty key; highlight sets and
// covers are keyed by book identifier.
type Store interface {
	Get(ctx context.Context, domain Domain, key string) ([]byte, error)
	Set(ctx context.Context, domain Domain, key string, data []byte) error
	Delete(ctx context.Context, domain Domain, key string) error
}

// MemoryStore is an in-memory Store used by tests and as a degraded
// fallback when the data directory is unusable.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func memKey(domain Domain, key string) string {
	return string(domain) + "/" + key
}

func (s *MemoryStore) Get(ctx context.Context, domain Domain, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[memKey(domain, key)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, domain Domain, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.data[memKey(domain, key)] = cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, domain Domain, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, memKey(domain, key))
	return nil
}
