// Package rediskv contains implementation of [remotekv.Interface] for Redis.
package rediskv

import (
	"context"
	"fmt"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/redisutil"
	"github.com/gomodule/redigo/redis"
)

// MinTTL is the minimum positive TTL, since that's the minimum expiration
// allowed by Redis.
const MinTTL = 1 * time.Millisecond

// Config is the configuration for the Redis-based [remotekv.Interface]
// implementation.
type Config struct {
	// Metrics is used for the collection of the Redis operations statistics.
	// It must not be nil.
	Metrics Metrics

	// Pool maintains a pool of Redis connections.  It must not be nil.
	Pool redisutil.Pool

	// TTL defines, after how much time the keys should expire.  Zero means
	// that the keys never expire, which is what the user rules lists need.  If
	// positive, it must be greater than or equal to [MinTTL].
	TTL time.Duration
}

// RedisKV is a Redis implementation of the [remotekv.Interface] interface.
//
// Note that Redis, by convention, uses colon ":" character to delimit key
// namespaces.  This process should be handled by [remotekv.KeyNamespace].
type RedisKV struct {
	metrics Metrics
	pool    redisutil.Pool
	ttl     time.Duration
}

// New returns a new *RedisKV.  c must not be nil.
func New(c *Config) (kv *RedisKV) {
	return &RedisKV{
		metrics: c.Metrics,
		pool:    c.Pool,
		ttl:     c.TTL,
	}
}

// type check
var _ remotekv.Interface = (*RedisKV)(nil)

// Get implements the [remotekv.Interface] interface for *RedisKV.
func (kv *RedisKV) Get(ctx context.Context, key string) (val []byte, ok bool, err error) {
	defer func() { err = errors.Annotate(err, "getting %q: %w", key) }()

	start := time.Now()
	defer func() { kv.metrics.ObserveOperation(ctx, OpGet, time.Since(start), err) }()

	c, err := kv.pool.Get(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("getting from pool: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, c.Close()) }()

	val, err = redis.Bytes(c.Do(redisutil.CmdGET, key))
	switch {
	case err == nil:
		return val, true, nil
	case errors.Is(err, redis.ErrNil):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("get command: %w", err)
	}
}

// Set implements the [remotekv.Interface] interface for *RedisKV.
func (kv *RedisKV) Set(ctx context.Context, key string, val []byte) (err error) {
	defer func() { err = errors.Annotate(err, "setting %q: %w", key) }()

	start := time.Now()
	defer func() { kv.metrics.ObserveOperation(ctx, OpSet, time.Since(start), err) }()

	c, err := kv.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("getting from pool: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, c.Close()) }()

	args := []any{key, val}
	if kv.ttl > 0 {
		args = append(args, redisutil.ParamPX, kv.ttl.Milliseconds())
	}

	_, err = c.Do(redisutil.CmdSET, args...)
	if err != nil {
		return fmt.Errorf("set command: %w", err)
	}

	return nil
}
