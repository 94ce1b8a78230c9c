// Package remotekv contains key-value storage interfaces, helpers, and
// implementations used to keep the user rules lists outside of the local
// filesystem.
package remotekv

import (
	"context"
)

// Interface is the key-value storage interface.  Implementations must be safe
// for concurrent use.
type Interface interface {
	// Get returns val by key from the storage.  ok is true if val by key
	// exists.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)

	// Set sets val into the storage by key.  Stored values must not expire on
	// their own.
	Set(ctx context.Context, key string, val []byte) (err error)
}

// Empty is the [Interface] implementation that stores nothing.
type Empty struct{}

// type check
var _ Interface = Empty{}

// Get implements the [Interface] interface for Empty.  ok is always false.
func (Empty) Get(_ context.Context, _ string) (val []byte, ok bool, err error) {
	return nil, false, nil
}

// Set implements the [Interface] interface for Empty.
func (Empty) Set(_ context.Context, _ string, _ []byte) (err error) {
	return nil
}
