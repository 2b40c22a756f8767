package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	post      *Post
	expiresAt time.Time
}

func (e *memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// MemoryStore is a mutex-guarded in-process store with optional TTL.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. A non-positive ttl means
// entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

// Get returns the cached post for a topic, dropping expired entries.
func (s *MemoryStore) Get(_ context.Context, topic string) (*Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[topic]
	if !ok {
		return nil, false, nil
	}
	if entry.expired() {
		delete(s.entries, topic)
		return nil, false, nil
	}
	return entry.post, true, nil
}

// Put caches a post under its topic.
func (s *MemoryStore) Put(_ context.Context, topic string, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}
	s.entries[topic] = &memoryEntry{post: post, expiresAt: expiresAt}
	return nil
}

// List returns all live posts, most recent first.
func (s *MemoryStore) List(_ context.Context) ([]*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*Post, 0, len(s.entries))
	for topic, entry := range s.entries {
		if entry.expired() {
			delete(s.entries, topic)
			continue
		}
		posts = append(posts, entry.post)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
