package agdcache

import (
	"fmt"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/viktordanov/golang-lru/simplelru"
)

// Config is a configuration structure of a [Default] cache.
type Config struct {
	// Clock is used to get current time for expiration.  It must not be nil.
	Clock timeutil.Clock

	// Count is the maximum number of elements to keep in the cache.  It must be
	// positive.
	Count int
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	var errs []error
	if c.Clock == nil {
		errs = append(errs, fmt.Errorf("Clock: %w", errors.ErrNoValue))
	}

	errs = append(errs, validate.Positive("Count", c.Count))

	return errors.Join(errs...)
}

// entry is a cached value with an optional deadline.
type entry[T any] struct {
	val T

	// deadline is the expiration time in Unix nanoseconds.  Zero means that
	// the entry never expires.
	deadline int64
}

// expired returns true if e has a deadline and now is past it.
func (e entry[T]) expired(now time.Time) (ok bool) {
	return e.deadline > 0 && now.UnixNano() > e.deadline
}

// Default is a thread safe, fixed size LRU cache with optional expiration of
// the entries.
type Default[K comparable, T any] struct {
	clock timeutil.Clock

	// mu protects lru.  Reading from lru changes the recency, so it requires
	// the write lock.
	mu  *sync.RWMutex
	lru *simplelru.LRU[K, entry[T]]
}

// New returns a new properly initialized *Default cache.  conf must be valid.
func New[K comparable, T any](conf *Config) (c *Default[K, T], err error) {
	err = conf.Validate()
	if err != nil {
		return nil, fmt.Errorf("agdcache: configuration: %w", err)
	}

	lru, err := simplelru.NewLRU[K, entry[T]](conf.Count, nil)
	if err != nil {
		return nil, fmt.Errorf("agdcache: creating lru: %w", err)
	}

	return &Default[K, T]{
		clock: conf.Clock,
		mu:    &sync.RWMutex{},
		lru:   lru,
	}, nil
}

// type check
var _ Interface[any, any] = (*Default[any, any])(nil)

// Set implements the [Interface] interface for *Default.  The entry never
// expires.
func (c *Default[K, T]) Set(key K, val T) {
	c.add(key, entry[T]{val: val})
}

// SetWithExpire implements the [Interface] interface for *Default.
func (c *Default[K, T]) SetWithExpire(key K, val T, expiration time.Duration) {
	c.add(key, entry[T]{
		val:      val,
		deadline: c.clock.Now().Add(expiration).UnixNano(),
	})
}

// add stores e by key.
func (c *Default[K, T]) add(key K, e entry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, e)
}

// Get implements the [Interface] interface for *Default.  Expired entries are
// removed on access.
func (c *Default[K, T]) Get(key K) (val T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return val, false
	}

	if e.expired(c.clock.Now()) {
		c.lru.Remove(key)

		return val, false
	}

	return e.val, true
}

// Clear implements the [Interface] interface for *Default.
func (c *Default[K, T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
}

// Len implements the [Interface] interface for *Default.  n may include items
// that have expired, but have not yet been accessed.
func (c *Default[K, T]) Len() (n int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lru.Len()
}
