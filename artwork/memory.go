package artwork

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMemoryCapacity = 64

// MemoryStore is the in-process tier: a fixed number of decoded images
// with least-recently-used eviction. It is safe for concurrent use.
type MemoryStore struct {
	cache *lru.Cache[Key, *CachedImage]
}

func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	c, err := lru.New[Key, *CachedImage](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

// Get returns the image for key and marks it most recently used.
func (m *MemoryStore) Get(key Key) (*CachedImage, bool) {
	return m.cache.Get(key)
}

func (m *MemoryStore) Put(key Key, img *CachedImage) {
	if img == nil {
		return
	}
	m.cache.Add(key, img)
}

func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

func (m *MemoryStore) Purge() {
	m.cache.Purge()
}
