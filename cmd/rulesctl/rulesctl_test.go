package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the common timeout for tests and contexts.
const testTimeout = 1 * time.Second

// testList is the list identity for tests.
const testList = "dns_blocklist"

// run executes rulesctl with args over the rules directory dir and returns its
// standard output.
func run(tb testing.TB, dir string, args ...string) (out string, err error) {
	tb.Helper()

	stdout := &bytes.Buffer{}
	root := newRootCmd(&bytes.Buffer{})
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--dir", dir, "--list", testList}, args...))

	err = root.ExecuteContext(testutil.ContextWithTimeout(tb, testTimeout))

	return stdout.String(), err
}

// mustRun is like run but requires success.
func mustRun(tb testing.TB, dir string, args ...string) (out string) {
	tb.Helper()

	out, err := run(tb, dir, args...)
	require.NoError(tb, err)

	return out
}

func TestRulesctl(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "list")
	assert.Empty(t, out)

	mustRun(t, dir, "add", "||a.example^", "||b.example^")
	mustRun(t, dir, "add", "--disabled", "||c.example^")

	out = mustRun(t, dir, "list")
	assert.Equal(t, "[x] ||a.example^\n[x] ||b.example^\n[ ] ||c.example^\n", out)

	_, err := run(t, dir, "add", "||a.example^")
	assert.ErrorIs(t, err, userrules.ErrDuplicateRule)

	mustRun(t, dir, "add", "--override", "--disabled", "||a.example^")
	mustRun(t, dir, "modify", "||b.example^", "||d.example^")
	mustRun(t, dir, "remove", "||c.example^")

	out = mustRun(t, dir, "list")
	assert.Equal(t, "[ ] ||a.example^\n[x] ||d.example^\n", out)

	_, err = run(t, dir, "remove", "||c.example^")
	assert.ErrorIs(t, err, userrules.ErrRuleNotFound)

	mustRun(t, dir, "clear")

	out = mustRun(t, dir, "list")
	assert.Empty(t, out)
}

func TestRulesctl_import(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "--disabled", "||a.example^")

	rulesPath := filepath.Join(t.TempDir(), "rules.txt")
	err := os.WriteFile(rulesPath, []byte("! Comment\n||a.example^\n\n||b.example^\n"), 0o600)
	require.NoError(t, err)

	mustRun(t, dir, "import", rulesPath)

	out := mustRun(t, dir, "list")
	assert.Equal(t, "[x] ||a.example^\n[x] ||b.example^\n", out)

	_, err = run(t, dir, "import", filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRulesctl_importLongLine(t *testing.T) {
	dir := t.TempDir()

	longRule := "||" + strings.Repeat("a", 100*1024) + ".example^"
	rulesPath := filepath.Join(t.TempDir(), "rules.txt")
	err := os.WriteFile(rulesPath, []byte("||a.example^\n"+longRule+"\n"), 0o600)
	require.NoError(t, err)

	mustRun(t, dir, "import", rulesPath)

	out := mustRun(t, dir, "list")
	assert.Equal(t, "[x] ||a.example^\n[x] "+longRule+"\n", out)
}

func TestRulesctl_invalidText(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "||пример.рф^")

	_, err := run(t, dir, "add", "||bad\xff^")

	persistErr := &userrules.PersistenceError{}
	require.ErrorAs(t, err, &persistErr)

	out := mustRun(t, dir, "list")
	assert.Equal(t, "[x] ||пример.рф^\n", out)
}

func TestRulesctl_reset(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "||a.example^")

	mustRun(t, dir, "reset")

	out := mustRun(t, dir, "list")
	assert.Empty(t, out)

	defaultsDir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(defaultsDir, testList+".txt"),
		[]byte("||ads.example^\n"),
		0o600,
	)
	require.NoError(t, err)

	mustRun(t, dir, "--defaults-dir", defaultsDir, "reset")

	out = mustRun(t, dir, "list")
	assert.Equal(t, "[x] ||ads.example^\n", out)

	_, err = run(t, dir, "--defaults-dir", t.TempDir(), "reset")
	assert.ErrorIs(t, err, userrules.ErrDefaultsUnavailable)
}

func TestRulesctl_unavailable(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing"), "list")
	assert.ErrorIs(t, err, userrules.ErrStorageUnavailable)
}
