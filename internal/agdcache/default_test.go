package agdcache_test

import (
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdcache"
	"github.com/AdguardTeam/golibs/testutil/faketime"
	"github.com/AdguardTeam/golibs/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		conf    *agdcache.Config
		name    string
		wantErr bool
	}{{
		conf: &agdcache.Config{
			Clock: timeutil.SystemClock{},
			Count: 1,
		},
		name:    "valid",
		wantErr: false,
	}, {
		conf:    nil,
		name:    "nil",
		wantErr: true,
	}, {
		conf: &agdcache.Config{
			Clock: timeutil.SystemClock{},
			Count: 0,
		},
		name:    "zero_count",
		wantErr: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := agdcache.New[string, int](tc.conf)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	now := time.Now()
	clock := &faketime.Clock{
		OnNow: func() (n time.Time) { return now },
	}

	cache, err := agdcache.New[string, int](&agdcache.Config{
		Clock: clock,
		Count: 10,
	})
	require.NoError(t, err)

	cache.Set(testKey, testVal)
	assert.Equal(t, 1, cache.Len())

	v, ok := cache.Get(testKey)
	assert.True(t, ok)
	assert.Equal(t, testVal, v)

	v, ok = cache.Get(absentKey)
	assert.False(t, ok)
	assert.Zero(t, v)

	cache.Clear()
	assert.Zero(t, cache.Len())

	cache.SetWithExpire(testKey, testVal, testExpiration)

	v, ok = cache.Get(testKey)
	assert.True(t, ok)
	assert.Equal(t, testVal, v)

	clock.OnNow = func() (n time.Time) { return now.Add(2 * testExpiration) }

	v, ok = cache.Get(testKey)
	assert.False(t, ok)
	assert.Zero(t, v)

	assert.Zero(t, cache.Len())
}

func TestDefault_eviction(t *testing.T) {
	cache, err := agdcache.New[int, int](&agdcache.Config{
		Clock: timeutil.SystemClock{},
		Count: 2,
	})
	require.NoError(t, err)

	cache.Set(1, 1)
	cache.Set(2, 2)

	// Touch the first key so that the second one becomes the oldest.
	_, ok := cache.Get(1)
	require.True(t, ok)

	cache.Set(3, 3)
	assert.Equal(t, 2, cache.Len())

	_, ok = cache.Get(2)
	assert.False(t, ok)

	_, ok = cache.Get(1)
	assert.True(t, ok)
}

func BenchmarkDefault(b *testing.B) {
	cache, err := agdcache.New[int, int](&agdcache.Config{
		Clock: timeutil.SystemClock{},
		Count: 10_000,
	})
	require.NoError(b, err)

	var ok bool

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		cache.Set(i, i)
		_, ok = cache.Get(i)
	}

	assert.True(b, ok)
}
