package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 1000

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache keeps metadata in a process-local expirable LRU.
type memoryCache struct {
	inner *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	size := cfg.Size
	if size <= 0 {
		size = defaultMemorySize
	}
	var onEvict func(string, []byte)
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) {
			cfg.OnEvict(key, value)
		}
	}
	return &memoryCache{
		inner: lru.NewLRU[string, []byte](size, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.inner.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) {
	m.inner.Add(key, value)
}

func (m *memoryCache) Contains(_ context.Context, key string) bool {
	return m.inner.Contains(key)
}

func (m *memoryCache) Len(_ context.Context) int {
	return m.inner.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
