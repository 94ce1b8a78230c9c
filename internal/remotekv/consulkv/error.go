package consulkv

import (
	"context"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/golibs/errors"
)

const (
	// ErrRateLimited is returned by [KV.Get] and [KV.Set] when the request is
	// rate limited.
	ErrRateLimited errors.Error = "rate limited"

	// ErrNotWritten is returned by [KV.Set] when Consul responds that the value
	// has not been written.
	ErrNotWritten errors.Error = "value not written"
)

// httpError is an error returned by the Consul KV database HTTP client.
type httpError struct {
	err error
}

// type check
var _ errors.Wrapper = httpError{}

// Error implements the error interface for httpError.
func (err httpError) Error() (msg string) {
	return err.err.Error()
}

// Unwrap implements the [errors.Wrapper] interface for httpError.
func (err httpError) Unwrap() (unwrapped error) {
	return err.err
}

// type check
var _ errcoll.SentryReportableError = httpError{}

// IsSentryReportable implements the [errcoll.SentryReportableError] interface
// for httpError.
func (err httpError) IsSentryReportable() (ok bool) {
	return !errors.Is(err.err, ErrRateLimited) &&
		!errors.Is(err.err, context.Canceled) &&
		!errors.Is(err.err, context.DeadlineExceeded)
}
