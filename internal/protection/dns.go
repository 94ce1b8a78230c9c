package protection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// DNSConfig is the configuration structure for [NewDNS].
type DNSConfig struct {
	// Logger is used for logging the operation of the managers and the
	// filter.  It must not be nil.
	Logger *slog.Logger

	// ErrColl is used to collect the notifier errors.  It must not be nil.
	ErrColl errcoll.Interface

	// Metrics is used for the collection of the user rules statistics.  It
	// must not be nil.
	Metrics userrules.Metrics

	// FilterMetrics is used for the collection of the filter statistics.  It
	// must not be nil.
	FilterMetrics DNSFilterMetrics

	// CacheManager is used to register the filter result cache.  It must not
	// be nil.
	CacheManager agdcache.Manager

	// Storage is the storage shared by both DNS lists, usually a
	// [filestorage.Storage].  It must not be nil.
	Storage userrules.Storage

	// Defaults supplies the rules for resets.  It must not be nil.
	Defaults userrules.DefaultsSource

	// CacheCount is the maximum number of the cached filtering results.  It
	// must be positive.
	CacheCount int
}

// DNS is the provider of the DNS lists and the filter compiled from them.
type DNS struct {
	// compileMu serializes taking the snapshots of both lists together with
	// compiling them, so that an older snapshot never replaces a newer one.
	compileMu *sync.Mutex

	lists  Lists
	filter *DNSFilter
}

// NewDNS returns a new provider with the DNS blocklist and allowlist sharing
// c.Storage.  The filter is compiled from the loaded lists and recompiled after
// every change of either list.  c must not be nil.
func NewDNS(ctx context.Context, c *DNSConfig) (p *DNS, err error) {
	p = &DNS{
		compileMu: &sync.Mutex{},
		filter: NewDNSFilter(&DNSFilterConfig{
			Logger:       c.Logger.With("component", "dns_filter"),
			CacheManager: c.CacheManager,
			Metrics:      c.FilterMetrics,
			CacheCount:   c.CacheCount,
		}),
	}

	p.lists, err = newManagers(ctx, &managerConfig{
		logger:   c.Logger,
		errColl:  c.ErrColl,
		metrics:  c.Metrics,
		notifier: userrules.NotifierFunc(p.compile),
		storage:  c.Storage,
		defaults: c.Defaults,
	}, DNSIDs())
	if err != nil {
		return nil, fmt.Errorf("creating dns lists: %w", err)
	}

	// Loading doesn't notify, so compile the loaded rules explicitly.
	_ = p.compile(ctx)

	return p, nil
}

// compile recompiles the filter from the current state of the lists.  It is
// used as the notifier of the lists.
func (p *DNS) compile(ctx context.Context) (err error) {
	p.compileMu.Lock()
	defer p.compileMu.Unlock()

	p.filter.Compile(ctx, p.Blocklist().AllRules(), p.Allowlist().AllRules())

	return nil
}

// Blocklist returns the manager of the DNS blocklist.
func (p *DNS) Blocklist() (m *userrules.Default) { return p.lists[IDDNSBlocklist] }

// Allowlist returns the manager of the DNS allowlist.
func (p *DNS) Allowlist() (m *userrules.Default) { return p.lists[IDDNSAllowlist] }

// Filter returns the filter compiled from the lists.
func (p *DNS) Filter() (f *DNSFilter) { return p.filter }

// Lists returns the managers of the provider.  The caller must not modify the
// returned map.
func (p *DNS) Lists() (l Lists) { return p.lists }
