// Package kvstorage contains the key-value implementation of
// [userrules.Storage] on top of [remotekv.Interface].
package kvstorage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/internal/listjson"
	"github.com/AdguardTeam/golibs/errors"
)

// Config is the configuration structure for [Storage].
type Config struct {
	// Logger is used for logging the operation of the storage.  It must not
	// be nil.
	Logger *slog.Logger

	// KV is the underlying key-value storage.  It must not be nil and must be
	// safe for concurrent use.
	KV remotekv.Interface

	// Metrics is used for the collection of the storage statistics.  It must
	// not be nil.
	Metrics Metrics

	// Prefix is added to the identity of the list to get the key.
	Prefix string
}

// Storage is the key-value [userrules.Storage].  The key of a list is the
// prefix followed by its identity, so distinct identities never share a key.
type Storage struct {
	logger  *slog.Logger
	kv      remotekv.Interface
	metrics Metrics
	prefix  string
}

// New returns a new properly initialized *Storage.  c must not be nil.
func New(c *Config) (s *Storage) {
	return &Storage{
		logger:  c.Logger,
		kv:      c.KV,
		metrics: c.Metrics,
		prefix:  c.Prefix,
	}
}

// type check
var _ userrules.Storage = (*Storage)(nil)

// Load implements the [userrules.Storage] interface for *Storage.  An absent
// key means an empty list.
func (s *Storage) Load(ctx context.Context, id userrules.ID) (rules []userrules.Rule, err error) {
	key := s.key(id)
	defer func() { err = errors.Annotate(err, "loading %q: %w", key) }()

	start := time.Now()
	data, ok, err := s.kv.Get(ctx, key)
	s.metrics.ObserveOperation(ctx, OpLoad, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", userrules.ErrStorageUnavailable, err)
	}

	s.metrics.IncrementLookups(ctx, ok)
	if !ok {
		s.logger.DebugContext(ctx, "key not present", "key", key)

		return nil, nil
	}

	rules, err = listjson.Decode(data)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	s.logger.DebugContext(ctx, "loaded", "key", key, "rules_num", len(rules))

	return rules, nil
}

// Save implements the [userrules.Storage] interface for *Storage.
func (s *Storage) Save(ctx context.Context, id userrules.ID, rules []userrules.Rule) (err error) {
	key := s.key(id)
	defer func() { err = errors.Annotate(err, "saving %q: %w", key) }()

	data, err := listjson.Encode(rules)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	start := time.Now()
	err = s.kv.Set(ctx, key, data)
	s.metrics.ObserveOperation(ctx, OpSave, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: %w", userrules.ErrStorageUnavailable, err)
	}

	s.logger.DebugContext(ctx, "saved", "key", key, "rules_num", len(rules))

	return nil
}

// key returns the key of the list with the given identity.
func (s *Storage) key(id userrules.ID) (key string) {
	return s.prefix + string(id)
}
