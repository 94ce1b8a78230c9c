package agdcache

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/bluele/gcache"
)

// LRUConfig is a configuration structure of an [LRU] cache.
type LRUConfig struct {
	// Expiration, if positive, is the lifetime of the entries added with
	// [LRU.Set].
	Expiration time.Duration

	// Count is the maximum number of elements to keep in the cache.  It must be
	// positive.
	Count int
}

// LRU is an [Interface] implementation backed by a gcache LRU cache.
type LRU[K, T any] struct {
	cache gcache.Cache
}

// NewLRU returns a new initialized LRU cache.  conf must not be nil.
func NewLRU[K, T any](conf *LRUConfig) (c *LRU[K, T]) {
	b := gcache.New(conf.Count).LRU()
	if conf.Expiration > 0 {
		b = b.Expiration(conf.Expiration)
	}

	return &LRU[K, T]{
		cache: b.Build(),
	}
}

// type check
var _ Interface[any, any] = (*LRU[any, any])(nil)

// Set implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Set(key K, val T) {
	err := c.cache.Set(key, val)
	if err != nil {
		// Shouldn't happen, since there is no serialization function.
		panic(fmt.Errorf("agdcache: setting lru item: %w", err))
	}
}

// SetWithExpire implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) SetWithExpire(key K, val T, expiration time.Duration) {
	err := c.cache.SetWithExpire(key, val, expiration)
	if err != nil {
		// Shouldn't happen, since there is no serialization function.
		panic(fmt.Errorf("agdcache: setting lru item with expiration: %w", err))
	}
}

// Get implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Get(key K) (val T, ok bool) {
	v, err := c.cache.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return val, false
	} else if err != nil {
		// Shouldn't happen, since there is no loader function.
		panic(fmt.Errorf("agdcache: getting lru item: %w", err))
	}

	// T may be an interface type.
	if v == nil {
		return val, true
	}

	return v.(T), true
}

// Clear implements the [Interface] interface for *LRU.
func (c *LRU[K, T]) Clear() {
	c.cache.Purge()
}

// Len implements the [Interface] interface for *LRU.  n may include items that
// have expired, but have not yet been cleaned up.
func (c *LRU[K, T]) Len() (n int) {
	return c.cache.Len(false)
}
