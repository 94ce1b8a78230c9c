// Package defaultrules contains implementations of [userrules.DefaultsSource],
// the sources of the rules that the lists are reset to.
package defaultrules

import (
	"context"
	"fmt"
	"slices"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// Empty is a [userrules.DefaultsSource] that returns no rules, so that a reset
// list is empty, like after a fresh install.
type Empty struct{}

// type check
var _ userrules.DefaultsSource = Empty{}

// Defaults implements the [userrules.DefaultsSource] interface for Empty.
func (Empty) Defaults(_ context.Context, _ userrules.ID) (rules []userrules.Rule, err error) {
	return nil, nil
}

// Static is a [userrules.DefaultsSource] with the rules set in the
// configuration.
type Static struct {
	rules map[userrules.ID][]userrules.Rule
}

// NewStatic returns a new *Static with the given rules per list.  rules must
// not be modified after calling NewStatic.  Lists that are not in rules have
// no defaults, and resetting them fails.
func NewStatic(rules map[userrules.ID][]userrules.Rule) (s *Static) {
	return &Static{
		rules: rules,
	}
}

// type check
var _ userrules.DefaultsSource = (*Static)(nil)

// Defaults implements the [userrules.DefaultsSource] interface for *Static.
func (s *Static) Defaults(_ context.Context, id userrules.ID) (rules []userrules.Rule, err error) {
	rules, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("list %q: %w", id, userrules.ErrDefaultsUnavailable)
	}

	return slices.Clone(rules), nil
}
