package chunkindex

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

type memSet struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// MemoryStore is an in-process Store used when no Redis address is configured
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	sets    map[string]*memSet
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		sets:    make(map[string]*memSet),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests to drive expiry
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Put(_ context.Context, setKey, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires := s.now().Add(ttl)
	buf := make([]byte, len(value))
	copy(buf, value)
	s.entries[key] = memEntry{value: buf, expiresAt: expires}

	set, ok := s.sets[setKey]
	if !ok || !s.now().Before(set.expiresAt) {
		set = &memSet{members: make(map[string]struct{})}
		s.sets[setKey] = set
	}
	set.members[key] = struct{}{}
	set.expiresAt = expires
	return nil
}

func (s *MemoryStore) Members(_ context.Context, setKey string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[setKey]
	if !ok || !s.now().Before(set.expiresAt) {
		return nil, nil
	}
	keys := make([]string, 0, len(set.members))
	for k := range set.members {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemoryStore) Values(_ context.Context, keys []string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if e, ok := s.entries[k]; ok && now.Before(e.expiresAt) {
			out[i] = e.value
		}
	}
	return out, nil
}

func (s *MemoryStore) Remove(_ context.Context, setKey, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	if set, ok := s.sets[setKey]; ok {
		delete(set.members, key)
		if len(set.members) == 0 {
			delete(s.sets, setKey)
		}
	}
	return nil
}

// Sweep drops expired entries and sets
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	for k, set := range s.sets {
		if !now.Before(set.expiresAt) {
			delete(s.sets, k)
		}
	}
	return removed
}

func (s *MemoryStore) Close() error { return nil }

// StartSweeper runs Sweep every interval until ctx is done
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
