// Package agdcache contains in-process cache interfaces, helpers, and
// implementations.  The caches are used as the local key-value storage of user
// rules and for the results of the compiled DNS user rules.
package agdcache

import (
	"time"
)

// Interface is the cache interface.  All methods must be safe for concurrent
// use.
type Interface[K, T any] interface {
	// Set sets key and val as cache pair.
	Set(key K, val T)

	// SetWithExpire sets key and val as cache pair which expires after
	// expiration.
	SetWithExpire(key K, val T, expiration time.Duration)

	// Get returns val from the cache using key.  ok is false if there is no
	// such key or it has expired.
	Get(key K) (val T, ok bool)

	// Clearer completely clears cache.
	Clearer

	// Len returns the number of items in the cache.
	Len() (n int)
}

// Clearer is a partial cache interface.
type Clearer interface {
	// Clear completely clears cache.
	Clear()
}

// Empty is an [Interface] implementation that stores nothing.
type Empty[K, T any] struct{}

// type check
var _ Interface[any, any] = Empty[any, any]{}

// Set implements the [Interface] interface for Empty.
func (Empty[K, T]) Set(_ K, _ T) {}

// SetWithExpire implements the [Interface] interface for Empty.
func (Empty[K, T]) SetWithExpire(_ K, _ T, _ time.Duration) {}

// Get implements the [Interface] interface for Empty.  ok is always false.
func (Empty[K, T]) Get(_ K) (val T, ok bool) {
	return val, false
}

// Clear implements the [Interface] interface for Empty.
func (Empty[K, T]) Clear() {}

// Len implements the [Interface] interface for Empty.  n is always zero.
func (Empty[K, T]) Len() (n int) {
	return 0
}
