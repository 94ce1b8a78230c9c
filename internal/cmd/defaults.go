package cmd

import (
	"fmt"
	"log/slog"

	"github.com/AdguardTeam/AdGuardUserRules/internal/defaultrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/validate"
)

// defaultsConfig is the configuration of the rules the lists are reset to.  At
// most one of Dir and Rules may be set.  If neither is, resetting a list empties
// it.
type defaultsConfig struct {
	// Rules are the inline default rules by the list identity.  All rules are
	// enabled.  Resetting a list missing from Rules fails.
	Rules map[string][]string `yaml:"rules"`

	// Dir is the directory with the files "<id>.txt" containing the default
	// rules.
	Dir string `yaml:"dir"`
}

// type check
var _ validate.Interface = (*defaultsConfig)(nil)

// Validate implements the [validate.Interface] interface for *defaultsConfig.
func (c *defaultsConfig) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	if c.Dir != "" {
		if len(c.Rules) > 0 {
			return errors.Error("dir and rules cannot be used together")
		}

		return validateDir(c.Dir)
	}

	var errs []error
	for id, texts := range c.Rules {
		errs = append(errs, validateDefaultRules(id, texts))
	}

	return errors.Join(errs...)
}

// validateDefaultRules returns an error if texts contain empty or duplicated
// rules.
func validateDefaultRules(id string, texts []string) (err error) {
	if id == "" {
		return fmt.Errorf("rules: %w", errors.ErrEmptyValue)
	}

	seen := make(map[string]struct{}, len(texts))
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("rules: %q: at index %d: %w", id, i, errors.ErrEmptyValue)
		}

		if _, ok := seen[text]; ok {
			return fmt.Errorf("rules: %q: at index %d: %w", id, i, userrules.ErrDuplicateRule)
		}

		seen[text] = struct{}{}
	}

	return nil
}

// toInternal returns the default rule source described by c.  c must be valid.
func (c *defaultsConfig) toInternal(baseLogger *slog.Logger) (src userrules.DefaultsSource) {
	switch {
	case c.Dir != "":
		return defaultrules.NewDir(&defaultrules.DirConfig{
			Logger: baseLogger.With(slogutil.KeyPrefix, "defaultrules"),
			Dir:    c.Dir,
		})
	case len(c.Rules) > 0:
		rules := make(map[userrules.ID][]userrules.Rule, len(c.Rules))
		for id, texts := range c.Rules {
			list := make([]userrules.Rule, 0, len(texts))
			for _, text := range texts {
				list = append(list, userrules.NewRule(text))
			}

			rules[userrules.ID(id)] = list
		}

		return defaultrules.NewStatic(rules)
	default:
		return defaultrules.Empty{}
	}
}
