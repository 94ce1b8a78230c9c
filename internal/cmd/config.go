// Package cmd is the AdGuard User Rules entry point.  It contains the on-disk
// configuration file utilities, signal processing logic, and so on.
package cmd

import (
	"fmt"
	"os"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v2"
)

// configuration represents the on-disk configuration of AdGuard User Rules.
// The order of the fields should generally not be altered.
type configuration struct {
	// Defaults is the configuration of the rules the lists are reset to.
	Defaults *defaultsConfig `yaml:"defaults"`

	// Cache is the configuration of the in-process caches.
	Cache *cacheConfig `yaml:"cache"`

	// Redis is the Redis connection pool configuration.  See the environment
	// type for the address.
	Redis *redisConfig `yaml:"redis"`

	// Consul is the Consul key-value storage configuration.  See the
	// environment type for the URL.
	Consul *consulConfig `yaml:"consul"`

	// Migration is the configuration of the legacy rules import.  See the
	// environment type for the legacy paths.
	Migration *migrationConfig `yaml:"migration"`
}

// type check
var _ validate.Interface = (*configuration)(nil)

// Validate implements the [validate.Interface] interface for *configuration.
func (c *configuration) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	// Keep this in the same order as the fields in the config.
	validators := container.KeyValues[string, validate.Interface]{{
		Key:   "defaults",
		Value: c.Defaults,
	}, {
		Key:   "cache",
		Value: c.Cache,
	}, {
		Key:   "redis",
		Value: c.Redis,
	}, {
		Key:   "consul",
		Value: c.Consul,
	}, {
		Key:   "migration",
		Value: c.Migration,
	}}

	var errs []error
	for _, kv := range validators {
		errs = validate.Append(errs, kv.Key, kv.Value)
	}

	return errors.Join(errs...)
}

// parseConfig reads the configuration.
func parseConfig(confPath string) (c *configuration, err error) {
	// #nosec G304 -- Trust the path to the configuration file that is given
	// from the environment.
	yamlFile, err := os.ReadFile(confPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c = &configuration{}
	err = yaml.Unmarshal(yamlFile, c)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return c, nil
}

// cacheConfig is the configuration of the in-process caches.
type cacheConfig struct {
	// DNSFilterSize is the number of the cached DNS filtering results.
	DNSFilterSize int `yaml:"dns_filter_size"`

	// KVSize is the number of the lists kept by the in-process key-value
	// storage, used when the KV_TYPE environment variable is "cache".
	KVSize int `yaml:"kv_size"`
}

// minKVSize is the minimum size of the in-process key-value storage, which
// must keep all Safari lists.
const minKVSize = 3

// type check
var _ validate.Interface = (*cacheConfig)(nil)

// Validate implements the [validate.Interface] interface for *cacheConfig.
func (c *cacheConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.Positive("dns_filter_size", c.DNSFilterSize),
		validate.NoLessThan("kv_size", c.KVSize, minKVSize),
	)
}

// redisConfig is the configuration of the Redis connection pool.
type redisConfig struct {
	// IdleTimeout is the time after which idle connections are closed.
	IdleTimeout timeutil.Duration `yaml:"idle_timeout"`

	// MaxConnLifetime is the maximum lifetime of a connection.
	MaxConnLifetime timeutil.Duration `yaml:"max_conn_lifetime"`

	// MaxActive is the maximum number of connections.
	MaxActive int `yaml:"max_active"`

	// MaxIdle is the maximum number of idle connections.
	MaxIdle int `yaml:"max_idle"`
}

// type check
var _ validate.Interface = (*redisConfig)(nil)

// Validate implements the [validate.Interface] interface for *redisConfig.
func (c *redisConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.Positive("idle_timeout", c.IdleTimeout),
		validate.Positive("max_conn_lifetime", c.MaxConnLifetime),
		validate.Positive("max_active", c.MaxActive),
		validate.Positive("max_idle", c.MaxIdle),
	)
}

// consulConfig is the configuration of the Consul key-value storage.
type consulConfig struct {
	// Timeout is the timeout of the requests.
	Timeout timeutil.Duration `yaml:"timeout"`

	// MaxRespSize is the maximum size of a response.
	MaxRespSize datasize.ByteSize `yaml:"max_resp_size"`

	// RPS is the maximum number of requests per second.
	RPS float64 `yaml:"rps"`

	// Burst is the maximum burst of requests.
	Burst int `yaml:"burst"`
}

// type check
var _ validate.Interface = (*consulConfig)(nil)

// Validate implements the [validate.Interface] interface for *consulConfig.
func (c *consulConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.Positive("timeout", c.Timeout),
		validate.Positive("max_resp_size", c.MaxRespSize),
		validate.Positive("rps", c.RPS),
		validate.Positive("burst", c.Burst),
	)
}

// migrationConfig is the configuration of the legacy rules import.
type migrationConfig struct {
	// Enabled shows if the legacy rules are imported on start.
	Enabled bool `yaml:"enabled"`
}

// type check
var _ validate.Interface = (*migrationConfig)(nil)

// Validate implements the [validate.Interface] interface for *migrationConfig.
func (c *migrationConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return nil
}
