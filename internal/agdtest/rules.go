package agdtest

import (
	"testing"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

// AssertEqualRules compares two ordered lists of rules, treating nil and empty
// lists as equal.  Both the order and the enabled flags matter.
func AssertEqualRules(tb testing.TB, want, got []userrules.Rule) (ok bool) {
	tb.Helper()

	diff := gocmp.Diff(want, got, cmpopts.EquateEmpty())
	if diff == "" {
		return true
	}

	// Use assert.Failf instead of tb.Errorf to get a more consistent error
	// message.
	return assert.Failf(tb, "rules not equal", "got: %+v\nwant: %+v\ndiff: %s", got, want, diff)
}
