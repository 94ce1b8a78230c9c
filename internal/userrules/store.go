package userrules

import (
	"fmt"
	"maps"
	"slices"
)

// Store is an in-memory ordered collection of rules with unique texts.  It
// performs no I/O and is not safe for concurrent use; [Default] serializes the
// access to it.
//
// A Store must be created with [NewStore].
type Store struct {
	// index maps the text of each rule to its position in rules.
	index map[string]int

	// rules are the rules in insertion order.
	rules []Rule
}

// NewStore returns a new store containing rules.  It returns an error wrapping
// [ErrDuplicateRule] if rules contain two rules with the same text.
func NewStore(rules []Rule) (s *Store, err error) {
	s = &Store{}
	err = s.Reset(rules)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Clone returns a deep copy of s.  Changes to the copy do not affect s.
func (s *Store) Clone() (c *Store) {
	return &Store{
		index: maps.Clone(s.index),
		rules: slices.Clone(s.rules),
	}
}

// Len returns the number of rules in s.
func (s *Store) Len() (n int) {
	return len(s.rules)
}

// Add appends r to the end of s.  If a rule with the same text exists and
// override is false, Add returns [ErrDuplicateRule]; if override is true, the
// existing rule is replaced at its position.
func (s *Store) Add(r Rule, override bool) (err error) {
	i, ok := s.index[r.Text]
	if !ok {
		s.append(r)

		return nil
	} else if !override {
		return fmt.Errorf("adding %q: %w", r.Text, ErrDuplicateRule)
	}

	s.rules[i] = r

	return nil
}

// AddRules adds rules to s.  The operation is all-or-nothing: if rules contain
// two rules with the same text, or if override is false and any of them is
// already in s, AddRules returns an error wrapping [ErrDuplicateRule] and s is
// not changed.  Otherwise, existing rules are replaced at their positions and
// new ones are appended in the order given.
//
// AddRules takes time linear in the number of rules plus the size of s.
func (s *Store) AddRules(rules []Rule, override bool) (err error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, ok := seen[r.Text]; ok {
			return fmt.Errorf("adding rules: %q repeated in batch: %w", r.Text, ErrDuplicateRule)
		}

		seen[r.Text] = struct{}{}

		if _, ok := s.index[r.Text]; ok && !override {
			return fmt.Errorf("adding rules: %q: %w", r.Text, ErrDuplicateRule)
		}
	}

	s.rules = slices.Grow(s.rules, len(rules))
	for _, r := range rules {
		if i, ok := s.index[r.Text]; ok {
			s.rules[i] = r
		} else {
			s.append(r)
		}
	}

	return nil
}

// ModifyRule replaces the rule with text oldText by r, keeping its position.
// It returns [ErrRuleNotFound] if there is no such rule and [ErrDuplicateRule]
// if r has a different text that belongs to another rule.
func (s *Store) ModifyRule(oldText string, r Rule) (err error) {
	i, ok := s.index[oldText]
	if !ok {
		return fmt.Errorf("modifying %q: %w", oldText, ErrRuleNotFound)
	}

	if r.Text != oldText {
		if _, ok = s.index[r.Text]; ok {
			return fmt.Errorf("modifying %q to %q: %w", oldText, r.Text, ErrDuplicateRule)
		}

		delete(s.index, oldText)
		s.index[r.Text] = i
	}

	s.rules[i] = r

	return nil
}

// RemoveRule removes the rule with the given text keeping the relative order
// of the others.  It returns [ErrRuleNotFound] if there is no such rule.
func (s *Store) RemoveRule(text string) (err error) {
	i, ok := s.index[text]
	if !ok {
		return fmt.Errorf("removing %q: %w", text, ErrRuleNotFound)
	}

	s.rules = slices.Delete(s.rules, i, i+1)
	delete(s.index, text)
	for j := i; j < len(s.rules); j++ {
		s.index[s.rules[j].Text] = j
	}

	return nil
}

// RemoveAllRules removes all rules from s.
func (s *Store) RemoveAllRules() {
	s.rules = nil
	clear(s.index)
}

// Reset replaces the contents of s with rules, keeping their order.  It returns
// an error wrapping [ErrDuplicateRule] if rules contain two rules with the same
// text, in which case s is not changed.
func (s *Store) Reset(rules []Rule) (err error) {
	index := make(map[string]int, len(rules))
	for i, r := range rules {
		if _, ok := index[r.Text]; ok {
			return fmt.Errorf("resetting: %q: %w", r.Text, ErrDuplicateRule)
		}

		index[r.Text] = i
	}

	s.index = index
	s.rules = slices.Clone(rules)

	return nil
}

// AllRules returns a copy of the rules in s in their order.
func (s *Store) AllRules() (rules []Rule) {
	return slices.Clone(s.rules)
}

// append adds r to the end of s.  r.Text must not be in s.
func (s *Store) append(r Rule) {
	if s.index == nil {
		s.index = map[string]int{}
	}

	s.index[r.Text] = len(s.rules)
	s.rules = append(s.rules, r)
}
