package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryStore is an in-process Store backed by go-cache. Used when no Redis
// URL is configured and as the deterministic backend in tests.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store. defaultTTL applies when Set is
// called with a non-positive TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, memoryCleanupInterval),
	}
}

// Get returns the value stored under key, if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}

	raw, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

// ScanPrefix returns all live entries whose key starts with prefix, in
// ascending key order so one scan is always stable.
func (s *MemoryStore) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	items := s.cache.Items()

	keys := make([]string, 0, len(items))
	for key := range items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, ok := items[key].Object.([]byte)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: raw})
	}
	return entries, nil
}

// Available always reports true; the process-local cache cannot be down.
func (s *MemoryStore) Available(ctx context.Context) bool {
	return true
}
