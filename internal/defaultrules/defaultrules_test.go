package defaultrules_test

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdtest"
	"github.com/AdguardTeam/AdGuardUserRules/internal/defaultrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

func TestEmpty(t *testing.T) {
	rules, err := defaultrules.Empty{}.Defaults(testutil.ContextWithTimeout(t, testTimeout), "blocklist")
	require.NoError(t, err)

	assert.Empty(t, rules)
}

func TestStatic(t *testing.T) {
	want := agdtest.NewRules("||ads.example^", 2)
	s := defaultrules.NewStatic(map[userrules.ID][]userrules.Rule{
		"dns_blocklist": want,
	})

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	got, err := s.Defaults(ctx, "dns_blocklist")
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, want, got)

	// The returned slice is a copy.
	got[0].Enabled = false

	got, err = s.Defaults(ctx, "dns_blocklist")
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, want, got)

	_, err = s.Defaults(ctx, "dns_allowlist")
	assert.ErrorIs(t, err, userrules.ErrDefaultsUnavailable)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()

	const data = "! Default rules.\n" +
		"||ads.example^\n" +
		"\n" +
		"  ||tracker.example^  \n" +
		"!||disabled.example^\n"

	err := os.WriteFile(filepath.Join(dir, "blocklist.txt"), []byte(data), 0o600)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "allowlist.txt"), []byte("a\nb\na\n"), 0o600)
	require.NoError(t, err)

	d := defaultrules.NewDir(&defaultrules.DirConfig{
		Logger: slogutil.NewDiscardLogger(),
		Dir:    dir,
	})

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	testCases := []struct {
		wantErr error
		name    string
		id      userrules.ID
		want    []userrules.Rule
	}{{
		wantErr: nil,
		name:    "success",
		id:      "blocklist",
		want: []userrules.Rule{
			userrules.NewRule("||ads.example^"),
			userrules.NewRule("||tracker.example^"),
		},
	}, {
		wantErr: userrules.ErrDefaultsUnavailable,
		name:    "missing",
		id:      "inverted_allowlist",
		want:    nil,
	}, {
		wantErr: userrules.ErrDuplicateRule,
		name:    "duplicate",
		id:      "allowlist",
		want:    nil,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, dErr := d.Defaults(ctx, tc.id)
			if tc.wantErr != nil {
				assert.ErrorIs(t, dErr, tc.wantErr)
				assert.ErrorIs(t, dErr, userrules.ErrDefaultsUnavailable)

				return
			}

			require.NoError(t, dErr)
			agdtest.AssertEqualRules(t, tc.want, got)
		})
	}
}

func TestDir_longLine(t *testing.T) {
	dir := t.TempDir()

	longRule := "||" + strings.Repeat("a", 100*1024) + ".example^"
	err := os.WriteFile(filepath.Join(dir, "blocklist.txt"), []byte("||ads.example^\n"+longRule+"\n"), 0o600)
	require.NoError(t, err)

	tooLong := strings.Repeat("a", int(userrules.MaxRuleLen.Bytes())+1)
	err = os.WriteFile(filepath.Join(dir, "allowlist.txt"), []byte(tooLong+"\n"), 0o600)
	require.NoError(t, err)

	d := defaultrules.NewDir(&defaultrules.DirConfig{
		Logger: slogutil.NewDiscardLogger(),
		Dir:    dir,
	})

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	got, err := d.Defaults(ctx, "blocklist")
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, []userrules.Rule{
		userrules.NewRule("||ads.example^"),
		userrules.NewRule(longRule),
	}, got)

	_, err = d.Defaults(ctx, "allowlist")
	assert.ErrorIs(t, err, userrules.ErrDefaultsUnavailable)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
