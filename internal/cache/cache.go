package cache

import (
	"context"
	"time"
)

// Entry is one stored key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the key-value backend shared by the job path and the recovery
// path. Implemented by RedisStore (prod) and MemoryStore (dev/test).
//
// The backend may be entirely unreachable; callers treat that as "recovery
// unsupported" and "cache miss", never as a hard failure of the job itself.
// Entries are always written whole, so concurrent writers to the same key
// are last-write-wins with no read-modify-write races.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL, replacing any
	// previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// ScanPrefix returns all entries whose key starts with prefix. Order
	// is implementation-defined but stable within one call.
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool
}
