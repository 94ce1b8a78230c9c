package userrules

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/validate"
)

// Config is the configuration structure for [Default].
type Config struct {
	// Logger is used for logging the operation of the manager.  It must not be
	// nil.
	Logger *slog.Logger

	// ErrColl is used to collect the errors of Notifier.  It must not be nil.
	ErrColl errcoll.Interface

	// Metrics is used for the collection of the user rules statistics.  It
	// must not be nil.
	Metrics Metrics

	// Notifier is called after every committed change.  It must not be nil,
	// use [EmptyNotifier] if no notification is needed.
	Notifier Notifier

	// Storage is the persistent storage of the list.  It must not be nil.
	Storage Storage

	// Defaults supplies the rules used by [Default.Reset].  It must not be
	// nil.
	Defaults DefaultsSource

	// ID is the identity of the list.  It must not be empty.
	ID ID
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotNil("Logger", c.Logger),
		validate.NotEmpty("ID", string(c.ID)),
	}

	// Keep this in the same order as the fields in the config.
	ifaces := container.KeyValues[string, any]{{
		Key:   "ErrColl",
		Value: c.ErrColl,
	}, {
		Key:   "Metrics",
		Value: c.Metrics,
	}, {
		Key:   "Notifier",
		Value: c.Notifier,
	}, {
		Key:   "Storage",
		Value: c.Storage,
	}, {
		Key:   "Defaults",
		Value: c.Defaults,
	}}

	for _, kv := range ifaces {
		if kv.Value == nil {
			errs = append(errs, fmt.Errorf("%s: %w", kv.Key, errors.ErrNoValue))
		}
	}

	return errors.Join(errs...)
}

// Default is the default [Interface] implementation.  Every mutation is applied
// to a copy of the list, saved to the storage, and only then made visible.  If
// saving fails, the copy is discarded, so the in-memory list never differs
// from the stored one.
type Default struct {
	logger   *slog.Logger
	errColl  errcoll.Interface
	metrics  Metrics
	notifier Notifier
	storage  Storage
	defaults DefaultsSource

	// mu protects store and serializes the storage writes.
	mu    *sync.RWMutex
	store *Store

	id ID
}

// New returns a new properly initialized *Default with the rules loaded from
// the storage.  c must be valid.
func New(ctx context.Context, c *Config) (m *Default, err error) {
	rules, err := c.Storage.Load(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("loading list %q: %w", c.ID, err)
	}

	s, err := NewStore(rules)
	if err != nil {
		return nil, fmt.Errorf("loading list %q: %w", c.ID, err)
	}

	m = &Default{
		logger:   c.Logger.With("list", string(c.ID)),
		errColl:  c.ErrColl,
		metrics:  c.Metrics,
		notifier: c.Notifier,
		storage:  c.Storage,
		defaults: c.Defaults,
		mu:       &sync.RWMutex{},
		store:    s,
		id:       c.ID,
	}

	m.metrics.SetRulesNum(ctx, m.id, s.Len())
	m.logger.DebugContext(ctx, "loaded", "rules_num", s.Len())

	return m, nil
}

// type check
var _ Interface = (*Default)(nil)

// ID returns the identity of the list.
func (m *Default) ID() (id ID) {
	return m.id
}

// Add implements the [Interface] interface for *Default.
func (m *Default) Add(ctx context.Context, r Rule, override bool) (err error) {
	return m.mutate(ctx, OpAdd, func(s *Store) (err error) {
		return s.Add(r, override)
	})
}

// AddRules implements the [Interface] interface for *Default.  It is also the
// entry point for importing large legacy lists.
func (m *Default) AddRules(ctx context.Context, rules []Rule, override bool) (err error) {
	return m.mutate(ctx, OpAddRules, func(s *Store) (err error) {
		return s.AddRules(rules, override)
	})
}

// ModifyRule implements the [Interface] interface for *Default.
func (m *Default) ModifyRule(ctx context.Context, oldText string, r Rule) (err error) {
	return m.mutate(ctx, OpModifyRule, func(s *Store) (err error) {
		return s.ModifyRule(oldText, r)
	})
}

// RemoveRule implements the [Interface] interface for *Default.
func (m *Default) RemoveRule(ctx context.Context, text string) (err error) {
	return m.mutate(ctx, OpRemoveRule, func(s *Store) (err error) {
		return s.RemoveRule(text)
	})
}

// RemoveAllRules implements the [Interface] interface for *Default.  It only
// returns an error if the storage fails.
func (m *Default) RemoveAllRules(ctx context.Context) (err error) {
	return m.mutate(ctx, OpRemoveAllRules, func(s *Store) (err error) {
		s.RemoveAllRules()

		return nil
	})
}

// Reset implements the [Interface] interface for *Default.  If the defaults
// cannot be obtained, the error wraps [ErrDefaultsUnavailable] and the list is
// not changed.
func (m *Default) Reset(ctx context.Context) (err error) {
	return m.mutate(ctx, OpReset, func(s *Store) (err error) {
		rules, err := m.defaults.Defaults(ctx, m.id)
		if err != nil {
			if errors.Is(err, ErrDefaultsUnavailable) {
				return err
			}

			return fmt.Errorf("%w: %w", ErrDefaultsUnavailable, err)
		}

		return s.Reset(rules)
	})
}

// AllRules implements the [Interface] interface for *Default.
func (m *Default) AllRules() (rules []Rule) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.store.AllRules()
}

// Len returns the number of rules in the list.
func (m *Default) Len() (n int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.store.Len()
}

// mutate applies f to a copy of the list, commits it, and notifies the
// notifier.  The notifier is called after the lock is released, so it may read
// the list.
func (m *Default) mutate(ctx context.Context, op string, f func(s *Store) (err error)) (err error) {
	err = m.commit(ctx, op, f)
	if err != nil {
		return err
	}

	err = m.notifier.Notify(ctx)
	if err != nil {
		m.metrics.IncrementNotifyErrors(ctx, m.id)
		errcoll.Collect(ctx, m.errColl, m.logger, "notifying about "+op, err)
	}

	return nil
}

// commit applies f to a copy of the list, saves the copy, and makes it the
// current list.  If either step fails, the current list is not changed.
func (m *Default) commit(ctx context.Context, op string, f func(s *Store) (err error)) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dur time.Duration
	defer func() { m.metrics.ObserveMutation(ctx, m.id, op, dur, err) }()

	next := m.store.Clone()
	err = f(next)
	if err != nil {
		return listError{err: err, id: m.id}
	}

	start := time.Now()
	err = m.storage.Save(ctx, m.id, next.rules)
	dur = time.Since(start)
	if err != nil {
		m.logger.WarnContext(ctx, "saving rules", "op", op, slogutil.KeyError, err)

		return &PersistenceError{
			Err: err,
			ID:  m.id,
		}
	}

	m.store = next
	m.metrics.SetRulesNum(ctx, m.id, next.Len())
	m.logger.DebugContext(ctx, "committed", "op", op, "rules_num", next.Len())

	return nil
}
