package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/AdGuardUserRules/internal/debugsvc"
	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/metrics"
	"github.com/AdguardTeam/AdGuardUserRules/internal/migration"
	"github.com/AdguardTeam/AdGuardUserRules/internal/protection"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv/consulkv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv/rediskv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/filestorage"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/kvstorage"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
	"github.com/AdguardTeam/golibs/redisutil"
	"github.com/AdguardTeam/golibs/service"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// safariKVPrefix is the prefix of the keys of the Safari lists within the
// key-value storage namespace.
const safariKVPrefix = "safari:"

// builder contains the logic of configuring and combining together AdGuard
// User Rules entities.
//
// NOTE:  Keep method definitions in the rough order in which they are intended
// to be called.
type builder struct {
	// The fields below are initialized immediately on construction.  Keep them
	// sorted.

	baseLogger     *slog.Logger
	cacheManager   *agdcache.DefaultManager
	conf           *configuration
	env            *environment
	errColl        errcoll.Interface
	gatherer       prometheus.Gatherer
	logger         *slog.Logger
	mtrcNamespace  string
	promRegisterer prometheus.Registerer
	sigHdlr        *service.SignalHandler

	// The fields below are initialized later by calling the builder's methods.
	// Keep them sorted.

	defaults      userrules.DefaultsSource
	dns           *protection.DNS
	dnsFilterMtrc protection.DNSFilterMetrics
	kv            remotekv.Interface
	kvStorageMtrc kvstorage.Metrics
	safari        *protection.Safari
	userRulesMtrc userrules.Metrics
}

// builderConfig contains the initial configuration for the builder.
type builderConfig struct {
	// envs contains the environment variables for the builder.  It must be
	// valid and must not be nil.
	envs *environment

	// conf contains the configuration from the configuration file for the
	// builder.  It must be valid and must not be nil.
	conf *configuration

	// baseLogger is used to create loggers for other entities.  It should not
	// have a prefix and must not be nil.
	baseLogger *slog.Logger

	// errColl is used to collect errors in the entities.  It must not be nil.
	errColl errcoll.Interface
}

// shutdownTimeout is the default shutdown timeout for all services.
const shutdownTimeout = 5 * time.Second

// newBuilder returns a new properly initialized builder.  c must not be nil.
func newBuilder(c *builderConfig) (b *builder) {
	return &builder{
		baseLogger:     c.baseLogger,
		cacheManager:   agdcache.NewDefaultManager(),
		conf:           c.conf,
		env:            c.envs,
		errColl:        c.errColl,
		gatherer:       prometheus.DefaultGatherer,
		logger:         c.baseLogger.With(slogutil.KeyPrefix, "builder"),
		mtrcNamespace:  metrics.Namespace,
		promRegisterer: prometheus.DefaultRegisterer,
		sigHdlr: service.NewSignalHandler(&service.SignalHandlerConfig{
			Logger:          c.baseLogger.With(slogutil.KeyPrefix, service.SignalHandlerPrefix),
			ShutdownTimeout: shutdownTimeout,
		}),
	}
}

// initMetrics initializes the metrics shared by the lists and their storages.
func (b *builder) initMetrics(ctx context.Context) (err error) {
	b.userRulesMtrc, err = metrics.NewUserRules(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return fmt.Errorf("user rules metrics: %w", err)
	}

	b.kvStorageMtrc, err = metrics.NewKVStorage(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return fmt.Errorf("kv storage metrics: %w", err)
	}

	b.dnsFilterMtrc, err = metrics.NewDNSFilter(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return fmt.Errorf("dns filter metrics: %w", err)
	}

	b.logger.DebugContext(ctx, "initialized metrics")

	return nil
}

// initDefaults initializes the source of the default rules.
func (b *builder) initDefaults(ctx context.Context) {
	b.defaults = b.conf.Defaults.toInternal(b.baseLogger)

	b.logger.DebugContext(ctx, "initialized defaults", "type", fmt.Sprintf("%T", b.defaults))
}

// initKV initializes the key-value storage of the Safari lists.
func (b *builder) initKV(ctx context.Context) (err error) {
	switch typ := b.env.KVType; typ {
	case kvTypeCache:
		b.kv, err = b.newCacheKV()
	case kvTypeConsul:
		b.kv, err = b.newConsulKV()
	case kvTypeRedis:
		b.kv, err = b.newRedisKV()
	default:
		panic(fmt.Errorf("kv type: unexpected value %q", typ))
	}

	if err != nil {
		return fmt.Errorf("initializing %s kv: %w", b.env.KVType, err)
	}

	b.logger.DebugContext(ctx, "initialized kv", "type", b.env.KVType)

	return nil
}

// newCacheKV returns a new in-process key-value storage.
func (b *builder) newCacheKV() (kv remotekv.Interface, err error) {
	cache, err := agdcache.New[string, []byte](&agdcache.Config{
		Clock: timeutil.SystemClock{},
		Count: b.conf.Cache.KVSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	return remotekv.NewCache(&remotekv.CacheConfig{
		Cache: cache,
	}), nil
}

// newConsulKV returns a new Consul key-value storage.  The environment must be
// valid.
func (b *builder) newConsulKV() (kv remotekv.Interface, err error) {
	u, err := b.env.consulKVURL()
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	c := b.conf.Consul

	return consulkv.NewKV(&consulkv.Config{
		URL: u,
		Client: agdhttp.NewClient(&agdhttp.ClientConfig{
			Timeout: time.Duration(c.Timeout),
		}),
		Limiter:     rate.NewLimiter(rate.Limit(c.RPS), c.Burst),
		MaxRespSize: c.MaxRespSize,
	})
}

// newRedisKV returns a new Redis key-value storage within the namespace from
// the environment.  The environment must be valid.
func (b *builder) newRedisKV() (kv remotekv.Interface, err error) {
	addr, err := b.env.redisAddr()
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	dialer, err := redisutil.NewDefaultDialer(&redisutil.DefaultDialerConfig{
		Addr:    addr,
		DBIndex: uint8(b.env.RedisDBIndex),
	})
	if err != nil {
		return nil, fmt.Errorf("dialer: %w", err)
	}

	c := b.conf.Redis
	pool, err := redisutil.NewDefaultPool(&redisutil.DefaultPoolConfig{
		Logger:          b.baseLogger.With(slogutil.KeyPrefix, "redis"),
		Dialer:          dialer,
		MaxConnLifetime: time.Duration(c.MaxConnLifetime),
		IdleTimeout:     time.Duration(c.IdleTimeout),
		MaxActive:       c.MaxActive,
		MaxIdle:         c.MaxIdle,
		Wait:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}

	mtrc, err := metrics.NewRedisKV(b.mtrcNamespace, b.promRegisterer)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	return remotekv.NewKeyNamespace(&remotekv.KeyNamespaceConfig{
		KV: rediskv.New(&rediskv.Config{
			Metrics: mtrc,
			Pool:    pool,
		}),
		Prefix: b.env.RedisKeyPrefix + ":",
	}), nil
}

// initSafari initializes the Safari lists.  [builder.initMetrics],
// [builder.initDefaults], and [builder.initKV] must be called before this
// method.
func (b *builder) initSafari(ctx context.Context) (err error) {
	storage := kvstorage.New(&kvstorage.Config{
		Logger:  b.baseLogger.With(slogutil.KeyPrefix, "kvstorage"),
		KV:      b.kv,
		Metrics: b.kvStorageMtrc,
		Prefix:  safariKVPrefix,
	})

	b.safari, err = protection.NewSafari(ctx, &protection.SafariConfig{
		Logger:   b.baseLogger.With(slogutil.KeyPrefix, "safari"),
		ErrColl:  b.errColl,
		Metrics:  b.userRulesMtrc,
		Notifier: userrules.EmptyNotifier{},
		Storage:  storage,
		Defaults: b.defaults,
	})
	if err != nil {
		return fmt.Errorf("initializing safari: %w", err)
	}

	b.logger.DebugContext(ctx, "initialized safari", "ids", b.safari.Lists().IDs())

	return nil
}

// initDNS initializes the DNS lists and their filter.  [builder.initMetrics]
// and [builder.initDefaults] must be called before this method.
func (b *builder) initDNS(ctx context.Context) (err error) {
	storage := filestorage.New(&filestorage.Config{
		Logger: b.baseLogger.With(slogutil.KeyPrefix, "filestorage"),
		Dir:    b.env.RulesDir,
	})

	b.dns, err = protection.NewDNS(ctx, &protection.DNSConfig{
		Logger:        b.baseLogger.With(slogutil.KeyPrefix, "dns"),
		ErrColl:       b.errColl,
		Metrics:       b.userRulesMtrc,
		FilterMetrics: b.dnsFilterMtrc,
		CacheManager:  b.cacheManager,
		Storage:       storage,
		Defaults:      b.defaults,
		CacheCount:    b.conf.Cache.DNSFilterSize,
	})
	if err != nil {
		return fmt.Errorf("initializing dns: %w", err)
	}

	b.logger.DebugContext(
		ctx,
		"initialized dns",
		"ids", b.dns.Lists().IDs(),
		"rules", b.dns.Filter().RulesNum(),
	)

	return nil
}

// runMigration imports the legacy rules into the Safari lists, if enabled.
// [builder.initSafari] must be called before this method.
func (b *builder) runMigration(ctx context.Context) (err error) {
	if !b.conf.Migration.Enabled {
		b.logger.DebugContext(ctx, "migration disabled")

		return nil
	}

	err = migration.Run(ctx, &migration.Config{
		Logger:            b.baseLogger.With(slogutil.KeyPrefix, "migration"),
		ErrColl:           b.errColl,
		Blocklist:         b.safari.Blocklist(),
		Allowlist:         b.safari.Allowlist(),
		InvertedAllowlist: b.safari.InvertedAllowlist(),
		DBPath:            b.env.LegacyDBPath,
		AllowlistDir:      b.env.LegacyAllowlistDir,
	})
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	b.logger.DebugContext(ctx, "ran migration")

	return nil
}

// mustInitDebugSvc initializes and starts the debug HTTP service.
// [builder.initSafari] and [builder.initDNS] must be called before this method.
func (b *builder) mustInitDebugSvc(ctx context.Context) {
	all := b.safari.Lists().Merge(b.dns.Lists())
	lists := make(map[userrules.ID]userrules.Interface, len(all))
	for id, m := range all {
		lists[id] = m
	}

	debugSvc := debugsvc.New(b.env.debugConf(b.baseLogger, b.cacheManager, b.gatherer, lists))

	// The debug HTTP service is considered critical, so its Start method panics
	// instead of returning an error.
	_ = debugSvc.Start(context.WithoutCancel(ctx))

	b.sigHdlr.AddService(debugSvc)

	b.logger.DebugContext(ctx, "initialized debug", "ids", all.IDs())
}

// handleSignals blocks and processes signals from the OS.  status is
// [osutil.ExitCodeSuccess] on success and [osutil.ExitCodeFailure] on error.
//
// handleSignals must not be called concurrently with any other methods.
func (b *builder) handleSignals(ctx context.Context) (code osutil.ExitCode) {
	b.logger.DebugContext(ctx, "cache manager initialized", "ids", b.cacheManager.IDs())

	return b.sigHdlr.Handle(ctx)
}
