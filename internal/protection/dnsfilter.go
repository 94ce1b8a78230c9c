package protection

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/AdGuardUserRules/internal/agdurlflt"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/syncutil"
	"github.com/AdguardTeam/urlfilter"
	"github.com/AdguardTeam/urlfilter/filterlist"
	"github.com/miekg/dns"
)

// DNSFilterCacheID is the identifier of the result cache of [DNSFilter] in the
// cache manager.
const DNSFilterCacheID = "protection/dns_filter"

// userRulesFilterID is the ID of the urlfilter rule list with the user rules.
const userRulesFilterID = 0

// DNSFilterConfig is the configuration structure for [DNSFilter].
type DNSFilterConfig struct {
	// Logger is used for logging the operation of the filter.  It must not be
	// nil.
	Logger *slog.Logger

	// CacheManager is used to register the result cache.  It must not be nil.
	CacheManager agdcache.Manager

	// Metrics is used for the collection of the filter statistics.  It must not
	// be nil.
	Metrics DNSFilterMetrics

	// CacheCount is the maximum number of the cached results.  It must be
	// positive.
	CacheCount int
}

// cacheKey is the key of the result cache.
type cacheKey struct {
	host  string
	qtype uint16
}

// DNSFilter matches DNS requests against the enabled rules of the DNS user rule
// lists.
type DNSFilter struct {
	logger  *slog.Logger
	cache   agdcache.Interface[cacheKey, bool]
	metrics DNSFilterMetrics
	reqPool *syncutil.Pool[urlfilter.DNSRequest]
	resPool *syncutil.Pool[urlfilter.DNSResult]

	// mu protects engine and rulesNum.  The cache is only filled and cleared
	// under mu, so that it never contains the results of an outdated engine.
	mu       *sync.RWMutex
	engine   *urlfilter.DNSEngine
	rulesNum int
}

// NewDNSFilter returns a new filter that blocks nothing until
// [DNSFilter.Compile] is called.  c must not be nil.
func NewDNSFilter(c *DNSFilterConfig) (f *DNSFilter) {
	cache := agdcache.NewLRU[cacheKey, bool](&agdcache.LRUConfig{
		Count: c.CacheCount,
	})
	c.CacheManager.Add(DNSFilterCacheID, cache)

	return &DNSFilter{
		logger:  c.Logger,
		cache:   cache,
		metrics: c.Metrics,
		reqPool: syncutil.NewPool(func() (req *urlfilter.DNSRequest) {
			return &urlfilter.DNSRequest{}
		}),
		resPool: syncutil.NewPool(func() (v *urlfilter.DNSResult) {
			return &urlfilter.DNSResult{}
		}),
		mu:     &sync.RWMutex{},
		engine: newEngine(nil),
	}
}

// newEngine returns a new DNS engine for the rules in text.
func newEngine(text []byte) (eng *urlfilter.DNSEngine) {
	lists := []filterlist.Interface{
		filterlist.NewBytes(&filterlist.BytesConfig{
			ID:             userRulesFilterID,
			RulesText:      text,
			IgnoreCosmetic: true,
		}),
	}

	// Should never panic, since the storage has only one list.
	rulesStrg := errors.Must(filterlist.NewRuleStorage(lists))

	return urlfilter.NewDNSEngine(rulesStrg)
}

// Compile replaces the engine of f with one compiled from the enabled rules of
// blocklist and allowlist, and clears the result cache.  The entries of the
// allowlist are converted into important exception rules.
func (f *DNSFilter) Compile(ctx context.Context, blocklist, allowlist []userrules.Rule) {
	start := time.Now()

	text := agdurlflt.EnabledToBytesLower(blocklist, allowlist)
	eng := newEngine(text)
	rulesNum := countEnabled(blocklist) + countEnabled(allowlist)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.engine = eng
	f.rulesNum = rulesNum
	f.cache.Clear()

	f.metrics.ObserveCompile(ctx, time.Since(start), rulesNum)
	f.logger.DebugContext(ctx, "compiled", "rules_num", rulesNum)
}

// countEnabled returns the number of enabled rules.
func countEnabled(rules []userrules.Rule) (n int) {
	for _, r := range rules {
		if r.Enabled {
			n++
		}
	}

	return n
}

// RulesNum returns the number of the rules in the current engine.
func (f *DNSFilter) RulesNum() (n int) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.rulesNum
}

// IsBlocked returns true if the request is blocked by the user rules.  Requests
// without exactly one question are never blocked.
func (f *DNSFilter) IsBlocked(ctx context.Context, req *dns.Msg) (blocked bool) {
	if len(req.Question) != 1 {
		return false
	}

	q := req.Question[0]
	key := cacheKey{
		host:  strings.ToLower(strings.TrimSuffix(q.Name, ".")),
		qtype: q.Qtype,
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	blocked, ok := f.cache.Get(key)
	f.metrics.IncrementLookups(ctx, ok)
	if ok {
		return blocked
	}

	blocked = f.match(key)
	f.cache.Set(key, blocked)

	return blocked
}

// match returns true if the host and type from key are blocked by the current
// engine.  f.mu must be locked.
func (f *DNSFilter) match(key cacheKey) (blocked bool) {
	req := f.reqPool.Get()
	defer f.reqPool.Put(req)

	req.Reset()
	req.Hostname = key.host
	req.DNSType = key.qtype

	res := f.resPool.Get()
	defer f.resPool.Put(res)

	res.Reset()

	blocked = f.engine.MatchRequestInto(req, res)
	if blocked && res.NetworkRule != nil {
		return !res.NetworkRule.Whitelist
	}

	return blocked
}
