package remotekv

import (
	"context"
	"slices"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
)

// CacheConfig is the configuration for the in-process [Cache].
type CacheConfig struct {
	// Cache is the underlying cache.  It must not be nil and should be large
	// enough to hold every key, since evicted lists are lost.
	Cache agdcache.Interface[string, []byte]
}

// Cache is an in-process [Interface] implementation.  It is mostly useful for
// development and tests, since the data does not survive restarts.
type Cache struct {
	cache agdcache.Interface[string, []byte]
}

// NewCache returns a new *Cache.  c must not be nil.
func NewCache(c *CacheConfig) (kv *Cache) {
	return &Cache{
		cache: c.Cache,
	}
}

// type check
var _ Interface = (*Cache)(nil)

// Get implements the [Interface] interface for *Cache.  val is a copy of the
// stored value.
func (kv *Cache) Get(_ context.Context, key string) (val []byte, ok bool, err error) {
	val, ok = kv.cache.Get(key)

	return slices.Clone(val), ok, nil
}

// Set implements the [Interface] interface for *Cache.  val is copied, so the
// caller may reuse it.
func (kv *Cache) Set(_ context.Context, key string, val []byte) (err error) {
	kv.cache.Set(key, slices.Clone(val))

	return nil
}
