package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Expiry is enforced on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	entry     *Entry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, campaignID string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.entries[campaignID]
	s.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.entry, nil
}

func (s *MemoryStore) Set(_ context.Context, campaignID string, entry *Entry, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[campaignID] = memoryEntry{entry: entry, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, campaignID string) error {
	s.mu.Lock()
	delete(s.entries, campaignID)
	s.mu.Unlock()
	return nil
}
