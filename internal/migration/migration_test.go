package migration_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/agdtest"
	"github.com/AdguardTeam/AdGuardUserRules/internal/defaultrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/migration"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

// newManager returns a new in-memory manager for tests.
func newManager(tb testing.TB, id userrules.ID) (m *userrules.Default) {
	tb.Helper()

	m, err := userrules.New(testutil.ContextWithTimeout(tb, testTimeout), &userrules.Config{
		Logger:   slogutil.NewDiscardLogger(),
		ErrColl:  agdtest.NewErrorCollector(),
		Metrics:  userrules.EmptyMetrics{},
		Notifier: userrules.EmptyNotifier{},
		Storage:  userrules.EmptyStorage{},
		Defaults: defaultrules.Empty{},
		ID:       id,
	})
	require.NoError(tb, err)

	return m
}

// newLegacyDB creates a legacy filters database at path.
func newLegacyDB(tb testing.TB, path string) {
	tb.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(tb, err)
	testutil.CleanupAndRequireSuccess(tb, db.Close)

	ctx := testutil.ContextWithTimeout(tb, testTimeout)

	_, err = db.ExecContext(ctx, `CREATE TABLE filter_rules (
	rule_id INTEGER NOT NULL,
	filter_id INTEGER NOT NULL,
	rule_text TEXT NOT NULL,
	is_enabled INTEGER NOT NULL
)`)
	require.NoError(tb, err)

	_, err = db.ExecContext(ctx, `INSERT INTO filter_rules VALUES
	(2, 0, '||second.example^', 0),
	(1, 0, '||first.example^', 1),
	(3, 1, '||other-filter.example^', 1),
	(4, 0, '||first.example^', 1)`)
	require.NoError(tb, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "adguard.db")
	newLegacyDB(t, dbPath)

	allowlistPath := filepath.Join(dir, migration.AllowlistFileName)
	err := os.WriteFile(allowlistPath, []byte("a.example\n\nb.example\na.example\n"), 0o600)
	require.NoError(t, err)

	ctx := testutil.ContextWithTimeout(t, testTimeout)

	blocklist := newManager(t, "blocklist")
	err = blocklist.Add(ctx, userrules.Rule{Text: "||first.example^", Enabled: false}, false)
	require.NoError(t, err)

	err = blocklist.Add(ctx, userrules.NewRule("||existing.example^"), false)
	require.NoError(t, err)

	allowlist := newManager(t, "allowlist")
	invertedAllowlist := newManager(t, "inverted_allowlist")

	conf := &migration.Config{
		Logger:            slogutil.NewDiscardLogger(),
		ErrColl:           agdtest.NewErrorCollector(),
		Blocklist:         blocklist,
		Allowlist:         allowlist,
		InvertedAllowlist: invertedAllowlist,
		DBPath:            dbPath,
		AllowlistDir:      dir,
	}

	err = migration.Run(ctx, conf)
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, []userrules.Rule{
		userrules.NewRule("||first.example^"),
		userrules.NewRule("||existing.example^"),
		{Text: "||second.example^", Enabled: false},
	}, blocklist.AllRules())

	agdtest.AssertEqualRules(t, []userrules.Rule{
		userrules.NewRule("a.example"),
		userrules.NewRule("b.example"),
	}, allowlist.AllRules())

	assert.Zero(t, invertedAllowlist.Len())

	assert.NoFileExists(t, dbPath)
	assert.NoFileExists(t, allowlistPath)

	// The second run finds nothing to migrate.
	err = migration.Run(ctx, conf)
	require.NoError(t, err)

	assert.Equal(t, 3, blocklist.Len())
}

func TestRun_longLine(t *testing.T) {
	dir := t.TempDir()

	longRule := "||" + strings.Repeat("a", 100*1024) + ".example^"
	data := "a.example\n" + longRule + "\nb.example\n"

	allowlistPath := filepath.Join(dir, migration.AllowlistFileName)
	err := os.WriteFile(allowlistPath, []byte(data), 0o600)
	require.NoError(t, err)

	allowlist := newManager(t, "allowlist")

	err = migration.Run(testutil.ContextWithTimeout(t, testTimeout), &migration.Config{
		Logger:            slogutil.NewDiscardLogger(),
		ErrColl:           agdtest.NewErrorCollector(),
		Blocklist:         newManager(t, "blocklist"),
		Allowlist:         allowlist,
		InvertedAllowlist: newManager(t, "inverted_allowlist"),
		AllowlistDir:      dir,
	})
	require.NoError(t, err)

	agdtest.AssertEqualRules(t, []userrules.Rule{
		userrules.NewRule("a.example"),
		userrules.NewRule(longRule),
		userrules.NewRule("b.example"),
	}, allowlist.AllRules())

	assert.NoFileExists(t, allowlistPath)
}

func TestRun_importError(t *testing.T) {
	dir := t.TempDir()

	allowlistPath := filepath.Join(dir, migration.AllowlistFileName)
	err := os.WriteFile(allowlistPath, []byte("a.example\n"), 0o600)
	require.NoError(t, err)

	invertedPath := filepath.Join(dir, migration.InvertedAllowlistFileName)
	err = os.WriteFile(invertedPath, []byte("b.example\n"), 0o600)
	require.NoError(t, err)

	invertedAllowlist := &agdtest.UserRulesManager{
		OnAddRules: func(_ context.Context, rules []userrules.Rule, override bool) (err error) {
			assert.True(t, override)

			return assert.AnError
		},
	}

	err = migration.Run(testutil.ContextWithTimeout(t, testTimeout), &migration.Config{
		Logger:            slogutil.NewDiscardLogger(),
		ErrColl:           agdtest.NewErrorCollector(),
		Blocklist:         newManager(t, "blocklist"),
		Allowlist:         newManager(t, "allowlist"),
		InvertedAllowlist: invertedAllowlist,
		AllowlistDir:      dir,
	})
	assert.ErrorIs(t, err, assert.AnError)

	// Nothing is removed, so the migration can be retried.
	assert.FileExists(t, allowlistPath)
	assert.FileExists(t, invertedPath)
}

func TestConfig_Validate(t *testing.T) {
	err := (&migration.Config{}).Validate()
	require.Error(t, err)

	for _, name := range []string{"Logger", "ErrColl", "Blocklist", "Allowlist", "InvertedAllowlist"} {
		assert.ErrorContains(t, err, name)
	}

	err = (*migration.Config)(nil).Validate()
	assert.ErrorIs(t, err, errors.ErrNoValue)
}
