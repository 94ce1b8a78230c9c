package defaultrules

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
)

// dirExt is the extension of the default rule files.
const dirExt = ".txt"

// commentPrefix starts comment lines in the default rule files.
const commentPrefix = "!"

// DirConfig is the configuration structure for [Dir].
type DirConfig struct {
	// Logger is used for logging the operation of the source.  It must not be
	// nil.
	Logger *slog.Logger

	// Dir is the directory with the files "<id>.txt".  It must not be empty.
	Dir string
}

// Dir is a [userrules.DefaultsSource] that reads the rules from the text files
// in a directory.  Each line of a file is an enabled rule; blank lines and
// lines starting with "!" are skipped.  The files are read on every call, so
// they can be changed without restarting.
type Dir struct {
	logger *slog.Logger
	dir    string
}

// NewDir returns a new properly initialized *Dir.  c must not be nil.
func NewDir(c *DirConfig) (d *Dir) {
	return &Dir{
		logger: c.Logger,
		dir:    c.Dir,
	}
}

// type check
var _ userrules.DefaultsSource = (*Dir)(nil)

// Defaults implements the [userrules.DefaultsSource] interface for *Dir.
func (d *Dir) Defaults(ctx context.Context, id userrules.ID) (rules []userrules.Rule, err error) {
	path := filepath.Join(d.dir, filepath.Base(string(id))+dirExt)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w: %w", id, userrules.ErrDefaultsUnavailable, err)
	}

	rules, err = parse(data)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w: %w", id, userrules.ErrDefaultsUnavailable, err)
	}

	d.logger.DebugContext(ctx, "read defaults", "path", path, "rules_num", len(rules))

	return rules, nil
}

// parse returns the rules from the text data.  Repeated rules are an error.
func parse(data []byte) (rules []userrules.Rule, err error) {
	seen := map[string]struct{}{}

	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), int(userrules.MaxRuleLen.Bytes()))
	for lineNum := 1; s.Scan(); lineNum++ {
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}

		if _, ok := seen[text]; ok {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, text, userrules.ErrDuplicateRule)
		}

		seen[text] = struct{}{}
		rules = append(rules, userrules.NewRule(text))
	}

	err = s.Err()
	if err != nil {
		return nil, errors.Annotate(err, "scanning: %w")
	}

	return rules, nil
}
