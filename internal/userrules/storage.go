package userrules

import (
	"context"
)

// Storage is the persistent storage of rule lists.  Implementations must be
// safe for concurrent use with distinct identities.
type Storage interface {
	// Load returns the rules stored for id in their order.  If nothing is
	// stored for id yet, Load returns no rules and no error.  If the medium
	// cannot be read, the error must wrap [ErrStorageUnavailable].
	Load(ctx context.Context, id ID) (rules []Rule, err error)

	// Save replaces the rules stored for id.  Save must not modify or retain
	// rules.  If the medium cannot be written, the error must wrap
	// [ErrStorageUnavailable].
	Save(ctx context.Context, id ID, rules []Rule) (err error)
}

// EmptyStorage is the [Storage] implementation that stores nothing.
type EmptyStorage struct{}

// type check
var _ Storage = EmptyStorage{}

// Load implements the [Storage] interface for EmptyStorage.  It always returns
// no rules.
func (EmptyStorage) Load(_ context.Context, _ ID) (_ []Rule, _ error) { return nil, nil }

// Save implements the [Storage] interface for EmptyStorage.
func (EmptyStorage) Save(_ context.Context, _ ID, _ []Rule) (_ error) { return nil }

// DefaultsSource supplies the factory-default rules used by [Default.Reset].
type DefaultsSource interface {
	// Defaults returns the default rules for id.  If they cannot be obtained,
	// the error must wrap [ErrDefaultsUnavailable].
	Defaults(ctx context.Context, id ID) (rules []Rule, err error)
}

// Notifier is notified after a change of a rule list has been committed.
type Notifier interface {
	// Notify is called after every successful mutation.  Its error is logged
	// and collected but doesn't affect the already committed change.
	Notify(ctx context.Context) (err error)
}

// NotifierFunc is a function that implements the [Notifier] interface.
type NotifierFunc func(ctx context.Context) (err error)

// type check
var _ Notifier = NotifierFunc(nil)

// Notify implements the [Notifier] interface for NotifierFunc.
func (f NotifierFunc) Notify(ctx context.Context) (err error) {
	return f(ctx)
}

// EmptyNotifier is the [Notifier] implementation that does nothing.
type EmptyNotifier struct{}

// type check
var _ Notifier = EmptyNotifier{}

// Notify implements the [Notifier] interface for EmptyNotifier.
func (EmptyNotifier) Notify(_ context.Context) (_ error) { return nil }
