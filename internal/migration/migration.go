// Package migration contains the one-time import of the user rules from the
// legacy storage: the filters database and the allowlist files.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
)

// Names of the legacy allowlist files.
const (
	AllowlistFileName         = "allowlist.txt"
	InvertedAllowlistFileName = "inverted_allowlist.txt"
)

// Config is the configuration structure for [Run].
type Config struct {
	// Logger is used for logging the migration.  It must not be nil.
	Logger *slog.Logger

	// ErrColl is used to collect the errors of removing the legacy files.  It
	// must not be nil.
	ErrColl errcoll.Interface

	// Blocklist receives the user rules from the database.  It must not be
	// nil.
	Blocklist userrules.Interface

	// Allowlist receives the rules from [AllowlistFileName].  It must not be
	// nil.
	Allowlist userrules.Interface

	// InvertedAllowlist receives the rules from [InvertedAllowlistFileName].
	// It must not be nil.
	InvertedAllowlist userrules.Interface

	// DBPath is the path to the legacy filters database.  If empty, the
	// database is not migrated.
	DBPath string

	// AllowlistDir is the directory with the legacy allowlist files.  If empty,
	// the allowlists are not migrated.
	AllowlistDir string
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotNil("Logger", c.Logger),
	}

	ifaces := container.KeyValues[string, any]{{
		Key:   "ErrColl",
		Value: c.ErrColl,
	}, {
		Key:   "Blocklist",
		Value: c.Blocklist,
	}, {
		Key:   "Allowlist",
		Value: c.Allowlist,
	}, {
		Key:   "InvertedAllowlist",
		Value: c.InvertedAllowlist,
	}}

	for _, kv := range ifaces {
		if kv.Value == nil {
			errs = append(errs, fmt.Errorf("%s: %w", kv.Key, errors.ErrNoValue))
		}
	}

	return errors.Join(errs...)
}

// source is a single legacy rule set together with its destination.
type source struct {
	dst  userrules.Interface
	read func(ctx context.Context) (rules []userrules.Rule, err error)
	name string
	path string
}

// Run imports the legacy rules into the managers from c, overriding the rules
// with the same texts, and then removes the legacy files.  Missing legacy files
// are skipped, so Run can safely be called on every start.  If importing any
// set fails, no legacy files are removed.  Errors of removing the files are
// collected and not returned.
func Run(ctx context.Context, c *Config) (err error) {
	err = c.Validate()
	if err != nil {
		return fmt.Errorf("migration: config: %w", err)
	}

	var sources []*source
	if c.DBPath != "" {
		sources = append(sources, &source{
			dst: c.Blocklist,
			read: func(ctx context.Context) (rules []userrules.Rule, err error) {
				return readDB(ctx, c.DBPath)
			},
			name: "database",
			path: c.DBPath,
		})
	}

	if c.AllowlistDir != "" {
		sources = append(
			sources,
			newFileSource(c.Allowlist, filepath.Join(c.AllowlistDir, AllowlistFileName)),
			newFileSource(
				c.InvertedAllowlist,
				filepath.Join(c.AllowlistDir, InvertedAllowlistFileName),
			),
		)
	}

	var migrated []*source
	for _, src := range sources {
		var ok bool
		ok, err = migrate(ctx, c.Logger, src)
		if err != nil {
			return fmt.Errorf("migration: %s: %w", src.name, err)
		} else if ok {
			migrated = append(migrated, src)
		}
	}

	for _, src := range migrated {
		err = os.Remove(src.path)
		if err != nil {
			err = fmt.Errorf("removing legacy %s: %w", src.name, err)
			errcoll.Collect(ctx, c.ErrColl, c.Logger, "migration", err)
		}
	}

	return nil
}

// newFileSource returns a source for the legacy rule file at path.
func newFileSource(dst userrules.Interface, path string) (src *source) {
	return &source{
		dst: dst,
		read: func(_ context.Context) (rules []userrules.Rule, err error) {
			return readFile(path)
		},
		name: filepath.Base(path),
		path: path,
	}
}

// migrate imports the rules of src.  ok is false if there is no legacy file.
func migrate(ctx context.Context, l *slog.Logger, src *source) (ok bool, err error) {
	_, err = os.Stat(src.path)
	if errors.Is(err, os.ErrNotExist) {
		l.DebugContext(ctx, "no legacy file", "name", src.name)

		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("checking file: %w", err)
	}

	rules, err := src.read(ctx)
	if err != nil {
		return false, fmt.Errorf("reading: %w", err)
	}

	rules = dedup(rules)
	if len(rules) > 0 {
		err = src.dst.AddRules(ctx, rules, true)
		if err != nil {
			return false, fmt.Errorf("importing: %w", err)
		}
	}

	l.InfoContext(ctx, "migrated", "name", src.name, "rules_num", len(rules))

	return true, nil
}

// dedup removes the rules with the texts that have already been seen, keeping
// the first one.
func dedup(rules []userrules.Rule) (res []userrules.Rule) {
	seen := make(map[string]struct{}, len(rules))
	res = rules[:0]
	for _, r := range rules {
		if _, ok := seen[r.Text]; ok {
			continue
		}

		seen[r.Text] = struct{}{}
		res = append(res, r)
	}

	return res
}
