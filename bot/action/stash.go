package action

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	payload string
	expires time.Time
}

// MemoryStash is an in-process Stash. Expired entries are dropped lazily.
type MemoryStash struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
	puts    int
}

// NewMemoryStash returns an empty MemoryStash.
func NewMemoryStash() *MemoryStash {
	return &MemoryStash{entries: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStash) Put(_ context.Context, key, payload string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.entries[key] = memEntry{payload: payload, expires: now.Add(ttl)}
	s.puts++
	if s.puts%256 == 0 {
		for k, e := range s.entries {
			if now.After(e.expires) {
				delete(s.entries, k)
			}
		}
	}
	return nil
}

func (s *MemoryStash) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", ErrStashMiss
	}
	if s.now().After(e.expires) {
		delete(s.entries, key)
		return "", ErrStashMiss
	}
	return e.payload, nil
}
