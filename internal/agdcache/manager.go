package agdcache

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Manager keeps track of the caches that can be cleared through the debug API.
// All methods must be safe for concurrent use.
type Manager interface {
	// Add registers cache by id.  cache must not be nil.  Add panics if a
	// cache with the same id is already registered.
	Add(id string, cache Clearer)

	// ClearByID clears the cache registered by id, if any.
	ClearByID(id string)
}

// DefaultManager is the [Manager] implementation that also reports the
// registered IDs.
type DefaultManager struct {
	mu     *sync.Mutex
	caches map[string]Clearer
}

// NewDefaultManager returns a new initialized *DefaultManager.
func NewDefaultManager() (m *DefaultManager) {
	return &DefaultManager{
		mu:     &sync.Mutex{},
		caches: map[string]Clearer{},
	}
}

// type check
var _ Manager = (*DefaultManager)(nil)

// Add implements the [Manager] interface for *DefaultManager.
func (m *DefaultManager) Add(id string, cache Clearer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.caches[id]; ok {
		panic(fmt.Errorf("agdcache: cache with id %q already registered", id))
	}

	m.caches[id] = cache
}

// ClearByID implements the [Manager] interface for *DefaultManager.
func (m *DefaultManager) ClearByID(id string) {
	m.mu.Lock()
	cache := m.caches[id]
	m.mu.Unlock()

	if cache != nil {
		cache.Clear()
	}
}

// IDs returns the sorted identifiers of the registered caches.
func (m *DefaultManager) IDs() (ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Sorted(maps.Keys(m.caches))
}

// EmptyManager is the [Manager] implementation that does nothing.
type EmptyManager struct{}

// type check
var _ Manager = EmptyManager{}

// Add implements the [Manager] interface for EmptyManager.
func (EmptyManager) Add(_ string, _ Clearer) {}

// ClearByID implements the [Manager] interface for EmptyManager.
func (EmptyManager) ClearByID(_ string) {}
