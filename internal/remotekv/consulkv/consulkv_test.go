package consulkv_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv/consulkv"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// testTimeout is the common timeout for tests and contexts.
const testTimeout = 1 * time.Second

// kvPath is the path of the test Consul KV storage.
const kvPath = "/v1/kv/userrules"

// testKV is a stub Consul KV DB for tests.
type testKV struct {
	storage sync.Map
}

// put is used to handle PUT HTTP method of accessing the database.
func (db *testKV) put(rw http.ResponseWriter, r *http.Request) {
	pt := testutil.PanicT{}

	require.Empty(pt, r.URL.Query().Get("acquire"))

	info, err := io.ReadAll(r.Body)
	require.NoError(pt, err)

	db.storage.Store(path.Base(r.URL.Path), info)

	rw.WriteHeader(http.StatusOK)
	_, err = io.WriteString(rw, "true")
	require.NoError(pt, err)
}

// get is used to handle GET HTTP method of accessing the database.
func (db *testKV) get(rw http.ResponseWriter, r *http.Request) {
	pt := testutil.PanicT{}

	v, ok := db.storage.Load(path.Base(r.URL.Path))
	if !ok {
		rw.WriteHeader(http.StatusNotFound)

		return
	}

	require.IsType(pt, ([]byte)(nil), v)

	rw.WriteHeader(http.StatusOK)
	err := json.NewEncoder(rw).Encode([]*consulkv.KeyReadResponse{{
		Value: v.([]byte),
	}})
	require.NoError(pt, err)
}

// ServeHTTP implements the [http.Handler] interface for *testKV.
func (db *testKV) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if !strings.HasPrefix(p, kvPath) {
		panic(fmt.Errorf("unexpected path %q", p))
	}

	switch r.Method {
	case http.MethodPut:
		db.put(rw, r)
	case http.MethodGet:
		db.get(rw, r)
	default:
		panic(fmt.Errorf("unexpected method %q", r.Method))
	}
}

// newKV returns a *consulkv.KV connected to a server emulating the Consul KV
// database.
func newKV(t *testing.T) (kv *consulkv.KV) {
	t.Helper()

	srv := httptest.NewServer(&testKV{})
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	kv, err = consulkv.NewKV(&consulkv.Config{
		URL: u.JoinPath(kvPath),
		Client: agdhttp.NewClient(&agdhttp.ClientConfig{
			Timeout: testTimeout,
		}),
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		MaxRespSize: 1 * datasize.MB,
	})
	require.NoError(t, err)

	return kv
}

func TestKV(t *testing.T) {
	const (
		testKey   = "blocklist"
		absentKey = "allowlist"
	)

	testVal := []byte(`{"version":1,"rules":[{"text":"||example.org^","enabled":true}]}`)

	kv := newKV(t)

	t.Run("set", func(t *testing.T) {
		err := kv.Set(testutil.ContextWithTimeout(t, testTimeout), testKey, testVal)
		require.NoError(t, err)
	})

	t.Run("hit", func(t *testing.T) {
		val, ok, err := kv.Get(testutil.ContextWithTimeout(t, testTimeout), testKey)
		require.NoError(t, err)

		assert.True(t, ok)
		assert.Equal(t, testVal, val)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok, err := kv.Get(testutil.ContextWithTimeout(t, testTimeout), absentKey)
		require.NoError(t, err)

		assert.False(t, ok)
	})
}

func TestKV_Get_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	kv, err := consulkv.NewKV(&consulkv.Config{
		URL: u.JoinPath(kvPath),
		Client: agdhttp.NewClient(&agdhttp.ClientConfig{
			Timeout: testTimeout,
		}),
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		MaxRespSize: 1 * datasize.KB,
	})
	require.NoError(t, err)

	_, _, err = kv.Get(testutil.ContextWithTimeout(t, testTimeout), "blocklist")

	var statusErr *agdhttp.StatusError
	require.ErrorAs(t, err, &statusErr)

	assert.Equal(t, http.StatusInternalServerError, statusErr.Got)
}

func TestNewKV(t *testing.T) {
	testCases := []struct {
		conf       *consulkv.Config
		name       string
		wantErrMsg string
	}{{
		conf: &consulkv.Config{
			URL: &url.URL{Path: "kv/test"},
		},
		name:       "correct",
		wantErrMsg: "",
	}, {
		conf:       &consulkv.Config{},
		name:       "nil_kv_url",
		wantErrMsg: "nil consul url",
	}, {
		conf: &consulkv.Config{
			URL: &url.URL{Path: "kv"},
		},
		name:       "few_parts",
		wantErrMsg: `consul url: path "kv": too few parts`,
	}, {
		conf: &consulkv.Config{
			URL: &url.URL{Path: "kv/"},
		},
		name:       "empty_last",
		wantErrMsg: `consul url: path "kv/": last part is empty`,
	}, {
		conf: &consulkv.Config{
			URL: &url.URL{Path: "not-kv/test"},
		},
		name:       "wrong_part",
		wantErrMsg: `consul url: path "not-kv/test": next to last part is "not-kv", want "kv"`,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := consulkv.NewKV(tc.conf)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
		})
	}
}
