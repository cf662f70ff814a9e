package svs

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// maxCacheEntries caps the entry count independently of the byte budget.
const maxCacheEntries = 1 << 16

type tileKey struct {
	layer int
	tile  int
}

// tileCache is a size-aware LRU of compressed tiles.
type tileCache struct {
	cache    *lru.Cache[tileKey, []byte]
	maxBytes int64
	size     int64
	mu       sync.Mutex // Protects size and eviction
}

func newTileCache(maxBytes int64) (*tileCache, error) {
	c := &tileCache{maxBytes: maxBytes}
	cache, err := lru.NewWithEvict(maxCacheEntries, func(_ tileKey, value []byte) {
		c.size -= int64(len(value))
	})
	if err != nil {
		return nil, fmt.Errorf("create tile cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// get returns a copy of the cached tile.
func (c *tileCache) get(k tileKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(k)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (c *tileCache) put(k tileKey, v []byte) {
	if int64(len(v)) > c.maxBytes {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache.Contains(k) {
		return
	}
	c.cache.Add(k, append([]byte(nil), v...))
	c.size += int64(len(v))
	for c.size > c.maxBytes {
		if _, _, ok := c.cache.RemoveOldest(); !ok {
			break
		}
	}
}

func (c *tileCache) bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
