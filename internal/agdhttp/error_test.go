package agdhttp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus(t *testing.T) {
	testCases := []struct {
		name       string
		srv        string
		wantErrMsg string
		exp        int
		got        int
	}{{
		name:       "kv_ok",
		srv:        testSrv,
		wantErrMsg: "",
		exp:        http.StatusOK,
		got:        http.StatusOK,
	}, {
		name:       "kv_acl_denied",
		srv:        testSrv,
		wantErrMsg: `server "` + testSrv + `": status code error: expected 200, got 403`,
		exp:        http.StatusOK,
		got:        http.StatusForbidden,
	}, {
		name:       "kv_no_leader",
		srv:        testSrv,
		wantErrMsg: `server "` + testSrv + `": status code error: expected 200, got 500`,
		exp:        http.StatusOK,
		got:        http.StatusInternalServerError,
	}, {
		name:       "proxy_unavailable",
		srv:        "",
		wantErrMsg: `server "": status code error: expected 200, got 503`,
		exp:        http.StatusOK,
		got:        http.StatusServiceUnavailable,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tc.got,
				Header: http.Header{
					httphdr.Server: []string{tc.srv},
				},
			}
			err := agdhttp.CheckStatus(resp, tc.exp)

			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
		})
	}
}

// newTestServer returns the URL of a test server that answers every request
// with the Server header set to testSrv and the result of h.
func newTestServer(t *testing.T, h http.HandlerFunc) (u *url.URL) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set(httphdr.Server, testSrv)
		h(rw, r)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return u
}

func TestCheckStatus_client(t *testing.T) {
	u := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, agdhttp.UserAgent(), r.Header.Get(httphdr.UserAgent))

		rw.WriteHeader(http.StatusInternalServerError)
	})

	c := agdhttp.NewClient(&agdhttp.ClientConfig{
		Timeout: testTimeout,
	})

	resp, err := c.Get(testutil.ContextWithTimeout(t, testTimeout), u.JoinPath("v1", "kv", "blocklist"))
	require.NoError(t, err)
	testutil.CleanupAndRequireSuccess(t, resp.Body.Close)

	err = agdhttp.CheckStatus(resp, http.StatusOK)

	statusErr := &agdhttp.StatusError{}
	require.ErrorAs(t, err, &statusErr)

	assert.Equal(t, testSrv, statusErr.ServerName)
	assert.Equal(t, http.StatusOK, statusErr.Expected)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Got)
}

func TestServerError(t *testing.T) {
	testCases := []struct {
		err        error
		name       string
		srv        string
		wantErrMsg string
	}{{
		err:        io.ErrUnexpectedEOF,
		name:       "truncated_body",
		srv:        testSrv,
		wantErrMsg: `server "` + testSrv + `": unexpected EOF`,
	}, {
		err:        testError,
		name:       "no_srv",
		srv:        "",
		wantErrMsg: `server "": ` + string(testError),
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				Header: http.Header{
					httphdr.Server: []string{tc.srv},
				},
			}
			err := agdhttp.WrapServerError(tc.err, resp)

			assert.ErrorIs(t, err, tc.err)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
		})
	}
}

func TestServerError_client(t *testing.T) {
	u := newTestServer(t, func(rw http.ResponseWriter, r *http.Request) {
		http.Redirect(rw, r, r.URL.Path, http.StatusTemporaryRedirect)
	})

	c := agdhttp.NewClient(&agdhttp.ClientConfig{
		Timeout: testTimeout,
	})

	_, err := c.Put(
		testutil.ContextWithTimeout(t, testTimeout),
		u.JoinPath("v1", "kv", "blocklist"),
		agdhttp.HdrValApplicationJSON,
		nil,
	)

	srvErr := &agdhttp.ServerError{}
	require.ErrorAs(t, err, &srvErr)

	assert.Equal(t, testSrv, srvErr.ServerName)
}
