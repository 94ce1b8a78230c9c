package userrules

import (
	"fmt"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/golibs/errors"
)

const (
	// ErrDuplicateRule is returned when an added or modified rule has the same
	// text as another rule in the list.
	ErrDuplicateRule errors.Error = "duplicate rule"

	// ErrRuleNotFound is returned when a modified or removed rule is not in
	// the list.
	ErrRuleNotFound errors.Error = "rule not found"

	// ErrStorageUnavailable is returned by [Storage] implementations when the
	// storage medium cannot be read or written.
	ErrStorageUnavailable errors.Error = "storage unavailable"

	// ErrDefaultsUnavailable is returned when a [DefaultsSource] cannot supply
	// the default rules for a list.
	ErrDefaultsUnavailable errors.Error = "default rules unavailable"
)

// PersistenceError is returned by the mutating methods of [Default] when the
// change itself is valid but saving it has failed.  The in-memory list is left
// unchanged in that case.
type PersistenceError struct {
	// Err is the underlying storage error.  It is usually wrapping
	// [ErrStorageUnavailable].
	Err error

	// ID is the identity of the list.
	ID ID
}

// type check
var _ error = (*PersistenceError)(nil)

// Error implements the [error] interface for *PersistenceError.
func (err *PersistenceError) Error() (msg string) {
	return fmt.Sprintf("persisting list %q: %s", err.ID, err.Err)
}

// type check
var _ errors.Wrapper = (*PersistenceError)(nil)

// Unwrap implements the [errors.Wrapper] interface for *PersistenceError.
func (err *PersistenceError) Unwrap() (unwrapped error) {
	return err.Err
}

// isCallerError returns true if err is caused by the caller's input rather
// than by the environment.
func isCallerError(err error) (ok bool) {
	return errors.Is(err, ErrDuplicateRule) || errors.Is(err, ErrRuleNotFound)
}

// listError is a rule-level error annotated with the list identity.  Errors
// caused by the caller's input are not reported to Sentry.
type listError struct {
	err error
	id  ID
}

// type check
var _ error = listError{}

// Error implements the [error] interface for listError.
func (err listError) Error() (msg string) {
	return fmt.Sprintf("list %q: %s", err.id, err.err)
}

// type check
var _ errors.Wrapper = listError{}

// Unwrap implements the [errors.Wrapper] interface for listError.
func (err listError) Unwrap() (unwrapped error) {
	return err.err
}

// type check
var _ errcoll.SentryReportableError = listError{}

// IsSentryReportable implements the [errcoll.SentryReportableError] interface
// for listError.
func (err listError) IsSentryReportable() (ok bool) {
	return !isCallerError(err.err)
}
