// Package consulkv contains implementation of [remotekv.Interface] for Consul
// key-value storage.
package consulkv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdhttp"
	"github.com/AdguardTeam/AdGuardUserRules/internal/remotekv"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/ioutil"
	"github.com/c2h5oh/datasize"
	"golang.org/x/time/rate"
)

// Config is the configuration structure for Consul key-value storage.  All
// fields must be non-empty.
type Config struct {
	// URL to the Consul key-value storage, for example
	// "http://consul:8500/v1/kv/userrules".
	URL *url.URL

	// Client is the HTTP client for requests to the Consul key-value storage.
	Client *agdhttp.Client

	// Limiter rate limits requests to the Consul key-value storage.
	Limiter *rate.Limiter

	// MaxRespSize is the maximum size of response from Consul key-value
	// storage.
	MaxRespSize datasize.ByteSize
}

// KV is the Consul remote KV implementation.  The values are written without
// sessions, so they never expire.
type KV struct {
	url         *url.URL
	client      *agdhttp.Client
	limiter     *rate.Limiter
	maxRespSize datasize.ByteSize
}

// NewKV returns a new Consul key-value storage.
func NewKV(conf *Config) (kv *KV, err error) {
	err = validateConsulURL(conf.URL)
	if err != nil {
		return nil, err
	}

	return &KV{
		url:         conf.URL,
		client:      conf.Client,
		limiter:     conf.Limiter,
		maxRespSize: conf.MaxRespSize,
	}, nil
}

// validateConsulURL returns an error if the Consul KV URL is invalid.
func validateConsulURL(u *url.URL) (err error) {
	if u == nil {
		return errors.Error("nil consul url")
	}

	defer func() { err = errors.Annotate(err, "consul url: path %q: %w", u.Path) }()

	parts := strings.Split(u.Path, "/")
	l := len(parts)
	if l < 2 {
		return errors.Error("too few parts")
	}

	if parts[l-2] != "kv" {
		return fmt.Errorf("next to last part is %q, want %q", parts[l-2], "kv")
	} else if parts[l-1] == "" {
		return errors.Error("last part is empty")
	}

	return nil
}

// type check
var _ remotekv.Interface = (*KV)(nil)

// KeyReadResponse is the item of the array that Consul returns as a response to
// a GET request to its KV database.
//
// See https://developer.hashicorp.com/consul/api-docs/kv#read-key.
type KeyReadResponse struct {
	Value []byte `json:"Value"`
}

// Get implements the [remotekv.Interface] interface for *KV.  Any error
// returned will have the underlying type of [httpError].
func (kv *KV) Get(ctx context.Context, key string) (val []byte, ok bool, err error) {
	defer func() {
		if err != nil {
			err = httpError{err: err}
		}
	}()

	err = kv.limiter.Wait(ctx)
	if err != nil {
		return nil, false, ErrRateLimited
	}

	httpResp, err := kv.client.Get(ctx, kv.url.JoinPath(key))
	if err != nil {
		return nil, false, fmt.Errorf("getting key %q from consul: %w", key, err)
	}
	defer func() { err = errors.WithDeferred(err, httpResp.Body.Close()) }()

	// If no key exists at the given path, a 404 is returned instead of a normal
	// 200 response.
	if httpResp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}

	err = agdhttp.CheckStatus(httpResp, http.StatusOK)
	if err != nil {
		return nil, false, fmt.Errorf("response for key %q: %w", key, err)
	}

	limitReader := ioutil.LimitReader(httpResp.Body, kv.maxRespSize.Bytes())

	var resp []*KeyReadResponse
	err = json.NewDecoder(limitReader).Decode(&resp)
	if err != nil {
		return nil, false, fmt.Errorf("decoding response for key %q from consul: %w", key, err)
	}

	if len(resp) == 0 || resp[0] == nil {
		return nil, false, fmt.Errorf("response for key %q from consul has no items", key)
	}

	return resp[0].Value, true, nil
}

// Set implements the [remotekv.Interface] interface for *KV.  Any error
// returned will have the underlying type of [httpError].
func (kv *KV) Set(ctx context.Context, key string, val []byte) (err error) {
	defer func() {
		if err != nil {
			err = httpError{err: err}
		}
	}()

	err = kv.limiter.Wait(ctx)
	if err != nil {
		return ErrRateLimited
	}

	resp, err := kv.client.Put(ctx, kv.url.JoinPath(key), "", bytes.NewReader(val))
	if err != nil {
		return fmt.Errorf("setting key %q in consul: %w", key, err)
	}
	defer func() { err = errors.WithDeferred(err, resp.Body.Close()) }()

	// Consul responds with 200 and a boolean body.
	//
	// See https://developer.hashicorp.com/consul/api-docs/kv#create-update-key.
	err = agdhttp.CheckStatus(resp, http.StatusOK)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}

	var written bool
	err = json.NewDecoder(ioutil.LimitReader(resp.Body, kv.maxRespSize.Bytes())).Decode(&written)
	if err != nil {
		return fmt.Errorf("decoding set response for key %q: %w", key, err)
	} else if !written {
		return fmt.Errorf("setting key %q: %w", key, ErrNotWritten)
	}

	return nil
}
