package migration

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"

	// Register the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// userFilterID is the identifier of the user filter in the legacy database.
const userFilterID = 0

// queryUserRules selects the user rules from the legacy database.
const queryUserRules = `SELECT rule_text, is_enabled FROM filter_rules
WHERE filter_id = ? ORDER BY rule_id`

// readDB returns the user rules from the legacy database at path.
func readDB(ctx context.Context, path string) (rules []userrules.Rule, err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, db.Close()) }()

	rows, err := db.QueryContext(ctx, queryUserRules, userFilterID)
	if err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, rows.Close()) }()

	for rows.Next() {
		r := userrules.Rule{}
		err = rows.Scan(&r.Text, &r.Enabled)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		r.Text = strings.TrimSpace(r.Text)
		if r.Text != "" {
			rules = append(rules, r)
		}
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

// readFile returns the rules from the legacy rule file at path.  Each non-empty
// line is an enabled rule.
func readFile(path string) (rules []userrules.Rule, err error) {
	f, err := os.Open(path)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}
	defer func() { err = errors.WithDeferred(err, f.Close()) }()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), int(userrules.MaxRuleLen.Bytes()))
	for s.Scan() {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			rules = append(rules, userrules.NewRule(text))
		}
	}

	err = s.Err()
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}

	return rules, nil
}
