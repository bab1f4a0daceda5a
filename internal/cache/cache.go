package cache

import "context"

// EvictCallback is called when an entry is evicted from the cache.
// The redis provider relies on server-side expiry and never calls it.
type EvictCallback func(key string, value []byte)

// Cache stores serialized media metadata keyed by video ID.
// Implementations may use in-memory storage or an external Redis/Valkey backend.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte)

	// Contains checks whether a key exists without affecting recency.
	Contains(ctx context.Context, key string) bool

	// Len returns the number of live entries.
	Len(ctx context.Context) int

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}
