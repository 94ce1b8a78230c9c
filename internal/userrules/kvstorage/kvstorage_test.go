package kvstorage_test

import (
	"context"
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/AdGuardUserRules/internal/agdtest"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/kvstorage"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

// testPrefix is the common key prefix for tests.
const testPrefix = "rules:"

func TestStorage(t *testing.T) {
	kv := remotekv.NewCache(&remotekv.CacheConfig{
		Cache: agdcache.NewLRU[string, []byte](&agdcache.LRUConfig{
			Count: 10,
		}),
	})

	s := kvstorage.New(&kvstorage.Config{
		Logger:  slogutil.NewDiscardLogger(),
		KV:      kv,
		Metrics: kvstorage.EmptyMetrics{},
		Prefix:  testPrefix,
	})

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	got, err := s.Load(ctx, "allowlist")
	require.NoError(t, err)

	assert.Empty(t, got)

	want := agdtest.NewRules("@@||example.org^", 3)
	want[1].Enabled = false

	err = s.Save(ctx, "allowlist", want)
	require.NoError(t, err)

	got, err = s.Load(ctx, "allowlist")
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, want, got)

	// Lists with other identities are not affected.
	got, err = s.Load(ctx, "blocklist")
	require.NoError(t, err)

	assert.Empty(t, got)

	data, ok, err := kv.Get(ctx, testPrefix+"allowlist")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, string(data), `"version":1`)
}

func TestStorage_unavailable(t *testing.T) {
	kv := &agdtest.RemoteKV{
		OnGet: func(_ context.Context, key string) (val []byte, ok bool, err error) {
			assert.Equal(t, testPrefix+"blocklist", key)

			return nil, false, assert.AnError
		},
		OnSet: func(_ context.Context, key string, _ []byte) (err error) {
			assert.Equal(t, testPrefix+"blocklist", key)

			return assert.AnError
		},
	}

	var lookups int
	s := kvstorage.New(&kvstorage.Config{
		Logger: slogutil.NewDiscardLogger(),
		KV:     kv,
		Metrics: &testMetrics{
			onIncrementLookups: func(_ context.Context, _ bool) { lookups++ },
		},
		Prefix: testPrefix,
	})

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	_, err := s.Load(ctx, "blocklist")
	assert.ErrorIs(t, err, userrules.ErrStorageUnavailable)
	assert.ErrorIs(t, err, assert.AnError)

	err = s.Save(ctx, "blocklist", nil)
	assert.ErrorIs(t, err, userrules.ErrStorageUnavailable)

	assert.Zero(t, lookups)
}

// testMetrics is a [kvstorage.Metrics] for tests.
type testMetrics struct {
	onIncrementLookups func(ctx context.Context, hit bool)
}

// type check
var _ kvstorage.Metrics = (*testMetrics)(nil)

// ObserveOperation implements the [kvstorage.Metrics] interface for
// *testMetrics.
func (m *testMetrics) ObserveOperation(_ context.Context, _ string, _ time.Duration) {}

// IncrementLookups implements the [kvstorage.Metrics] interface for
// *testMetrics.
func (m *testMetrics) IncrementLookups(ctx context.Context, hit bool) {
	m.onIncrementLookups(ctx, hit)
}

func TestStorage_withManager(t *testing.T) {
	kv := remotekv.NewCache(&remotekv.CacheConfig{
		Cache: agdcache.NewLRU[string, []byte](&agdcache.LRUConfig{
			Count: 10,
		}),
	})

	s := kvstorage.New(&kvstorage.Config{
		Logger:  slogutil.NewDiscardLogger(),
		KV:      kv,
		Metrics: kvstorage.EmptyMetrics{},
		Prefix:  testPrefix,
	})

	newManager := func() (m *userrules.Default) {
		m, err := userrules.New(testutil.ContextWithTimeout(t, testTimeout), &userrules.Config{
			Logger:   slogutil.NewDiscardLogger(),
			ErrColl:  agdtest.NewErrorCollector(),
			Metrics:  userrules.EmptyMetrics{},
			Notifier: userrules.EmptyNotifier{},
			Storage:  s,
			Defaults: &agdtest.DefaultsSource{},
			ID:       "blocklist",
		})
		require.NoError(t, err)

		return m
	}

	m := newManager()
	err := m.AddRules(testutil.ContextWithTimeout(t, testTimeout), agdtest.NewRules("foo", 5), false)
	require.NoError(t, err)

	// A new manager with the same storage sees the same list.
	agdtest.AssertEqualRules(t, m.AllRules(), newManager().AllRules())
}
