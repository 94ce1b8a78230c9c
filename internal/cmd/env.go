package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/AdGuardUserRules/internal/debugsvc"
	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/version"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/caarlos0/env/v7"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
)

// environment represents the configuration that is kept in the environment.
type environment struct {
	ConfPath           string `env:"CONFIG_PATH" envDefault:"./config.yaml"`
	ConsulKVURL        string `env:"CONSUL_KV_URL"`
	KVType             string `env:"KV_TYPE" envDefault:"cache"`
	LegacyAllowlistDir string `env:"LEGACY_ALLOWLIST_DIR"`
	LegacyDBPath       string `env:"LEGACY_DB_PATH"`
	LogFormat          string `env:"LOG_FORMAT" envDefault:"text"`
	RedisAddr          string `env:"REDIS_ADDR"`
	RedisKeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"userrules"`
	RulesDir           string `env:"RULES_DIR" envDefault:"./rules/"`
	SentryDSN          string `env:"SENTRY_DSN" envDefault:"stderr"`

	ListenAddr net.IP `env:"LISTEN_ADDR" envDefault:"127.0.0.1"`

	RedisDBIndex int `env:"REDIS_DB_INDEX" envDefault:"0"`

	ListenPort uint16 `env:"LISTEN_PORT" envDefault:"8181"`

	Verbosity uint8 `env:"VERBOSE" envDefault:"0"`

	LogTimestamp strictBool `env:"LOG_TIMESTAMP" envDefault:"1"`
}

// Key-value storage types for the Safari lists.
const (
	kvTypeCache  = "cache"
	kvTypeConsul = "consul"
	kvTypeRedis  = "redis"
)

// parseEnvironment reads the configuration.
func parseEnvironment() (envs *environment, err error) {
	envs = &environment{}
	err = env.Parse(envs)
	if err != nil {
		return nil, fmt.Errorf("parsing environments: %w", err)
	}

	return envs, nil
}

// type check
var _ validate.Interface = (*environment)(nil)

// Validate implements the [validate.Interface] interface for *environment.
func (envs *environment) Validate() (err error) {
	errs := []error{
		validate.NotEmpty("CONFIG_PATH", envs.ConfPath),
		validate.NotEmpty("SENTRY_DSN", envs.SentryDSN),
	}

	_, err = slogutil.NewFormat(envs.LogFormat)
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %w", err))
	}

	_, err = slogutil.VerbosityToLevel(envs.Verbosity)
	if err != nil {
		errs = append(errs, fmt.Errorf("VERBOSE: %w", err))
	}

	err = validateDir(envs.RulesDir)
	if err != nil {
		errs = append(errs, fmt.Errorf("RULES_DIR: %w", err))
	}

	if envs.LegacyAllowlistDir != "" {
		err = validateDir(envs.LegacyAllowlistDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("LEGACY_ALLOWLIST_DIR: %w", err))
		}
	}

	errs = envs.validateKV(errs)

	return errors.Join(errs...)
}

// validateKV appends validation errors to errs if the environment variables for
// the key-value storage contain errors.
func (envs *environment) validateKV(errs []error) (res []error) {
	res = errs

	var err error
	switch typ := envs.KVType; typ {
	case kvTypeCache:
		// Go on.
	case kvTypeConsul:
		_, err = envs.consulKVURL()
	case kvTypeRedis:
		_, err = envs.redisAddr()
		err = errors.Join(err, validate.NoLessThan("env REDIS_DB_INDEX", envs.RedisDBIndex, 0))
	default:
		err = fmt.Errorf("env KV_TYPE: %w: %q", errors.ErrBadEnumValue, typ)
	}

	if err != nil {
		res = append(res, err)
	}

	return res
}

// consulKVURL returns the parsed CONSUL_KV_URL.
func (envs *environment) consulKVURL() (u *url.URL, err error) {
	u, err = agdhttp.ParseHTTPURL(envs.ConsulKVURL)
	if err != nil {
		return nil, fmt.Errorf("env CONSUL_KV_URL: %w", err)
	}

	return u, nil
}

// redisAddr returns the parsed REDIS_ADDR.
func (envs *environment) redisAddr() (hp *netutil.HostPort, err error) {
	host, port, err := netutil.SplitHostPort(envs.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("env REDIS_ADDR: %w", err)
	}

	return &netutil.HostPort{
		Host: host,
		Port: port,
	}, nil
}

// validateDir is a best-effort check to make sure the directory exists.
func validateDir(dirPath string) (err error) {
	fi, err := os.Stat(dirPath)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return errors.Error("not a directory")
	}

	return nil
}

// buildErrColl builds and returns an error collector from environment.
func (envs *environment) buildErrColl() (errColl errcoll.Interface, err error) {
	dsn := envs.SentryDSN
	if dsn == "stderr" {
		return errcoll.NewWriterErrorCollector(os.Stderr), nil
	}

	cli, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          version.Version(),
	})
	if err != nil {
		return nil, err
	}

	return errcoll.NewSentryErrorCollector(cli), nil
}

// debugConf returns a debug HTTP service configuration from environment.
func (envs *environment) debugConf(
	logger *slog.Logger,
	cacheMgr *agdcache.DefaultManager,
	gatherer prometheus.Gatherer,
	lists map[userrules.ID]userrules.Interface,
) (conf *debugsvc.Config) {
	addr := netutil.JoinHostPort(envs.ListenAddr.String(), envs.ListenPort)

	return &debugsvc.Config{
		Logger:         logger.With(slogutil.KeyPrefix, "debugsvc"),
		CacheManager:   cacheMgr,
		Gatherer:       gatherer,
		Lists:          lists,
		APIAddr:        addr,
		PprofAddr:      addr,
		PrometheusAddr: addr,
	}
}

// strictBool is a type for booleans that are parsed from the environment more
// strictly than the usual bool.  It only accepts "0" and "1" as valid values.
type strictBool bool

// UnmarshalText implements the encoding.TextUnmarshaler interface for
// *strictBool.
func (sb *strictBool) UnmarshalText(b []byte) (err error) {
	if len(b) == 1 {
		switch b[0] {
		case '0':
			*sb = false

			return nil
		case '1':
			*sb = true

			return nil
		default:
			// Go on and return an error.
		}
	}

	return fmt.Errorf("invalid value %q, supported: %q, %q", b, "0", "1")
}
