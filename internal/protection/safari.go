package protection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// SafariConfig is the configuration structure for [NewSafari].
type SafariConfig struct {
	// Logger is used for logging the operation of the managers.  It must not
	// be nil.
	Logger *slog.Logger

	// ErrColl is used to collect the notifier errors.  It must not be nil.
	ErrColl errcoll.Interface

	// Metrics is used for the collection of the user rules statistics.  It
	// must not be nil.
	Metrics userrules.Metrics

	// Notifier is called after every committed change of any list, for
	// example to reload the content blocker.  It must not be nil.
	Notifier userrules.Notifier

	// Storage is the storage shared by all Safari lists, usually a
	// [kvstorage.Storage].  It must not be nil.
	Storage userrules.Storage

	// Defaults supplies the rules for resets.  It must not be nil.
	Defaults userrules.DefaultsSource
}

// Safari is the provider of the Safari content blocker lists.
type Safari struct {
	lists Lists
}

// NewSafari returns a new provider with the allowlist, the inverted allowlist,
// and the blocklist sharing c.Storage.  c must not be nil.
func NewSafari(ctx context.Context, c *SafariConfig) (p *Safari, err error) {
	lists, err := newManagers(ctx, &managerConfig{
		logger:   c.Logger,
		errColl:  c.ErrColl,
		metrics:  c.Metrics,
		notifier: c.Notifier,
		storage:  c.Storage,
		defaults: c.Defaults,
	}, SafariIDs())
	if err != nil {
		return nil, fmt.Errorf("creating safari lists: %w", err)
	}

	return &Safari{
		lists: lists,
	}, nil
}

// Allowlist returns the manager of the allowlist.
func (p *Safari) Allowlist() (m *userrules.Default) { return p.lists[IDAllowlist] }

// InvertedAllowlist returns the manager of the inverted allowlist.
func (p *Safari) InvertedAllowlist() (m *userrules.Default) { return p.lists[IDInvertedAllowlist] }

// Blocklist returns the manager of the blocklist.
func (p *Safari) Blocklist() (m *userrules.Default) { return p.lists[IDBlocklist] }

// Lists returns the managers of the provider.  The caller must not modify the
// returned map.
func (p *Safari) Lists() (l Lists) { return p.lists }
