// Package userrules contains the user rules manager: an ordered, uniquely-keyed
// collection of user-authored filtering rules backed by a persistent storage.
package userrules

import (
	"context"

	"github.com/c2h5oh/datasize"
)

// MaxRuleLen is the maximum length of a line with a rule read from rule files.
const MaxRuleLen datasize.ByteSize = 1 * datasize.MB

// ID is the identity of a single rule list, for example "blocklist" or
// "dns_allowlist".  It namespaces the list in the persistent storage.
type ID string

// Rule is a single user-authored filtering rule.  Two rules are the same rule
// if their Text fields are equal; Enabled does not participate in identity.
type Rule struct {
	// Text is the text of the rule.  It is the unique key of the rule within
	// one list.
	Text string `json:"text"`

	// Enabled shows if the rule is enabled.
	Enabled bool `json:"enabled"`
}

// NewRule returns an enabled rule with the given text.
func NewRule(text string) (r Rule) {
	return Rule{
		Text:    text,
		Enabled: true,
	}
}

// Interface is the user rules manager interface.  All methods must be safe for
// concurrent use.
type Interface interface {
	// Add adds r to the end of the list.  If a rule with the same text
	// already exists and override is false, Add returns [ErrDuplicateRule];
	// if override is true, the existing rule is replaced in place.
	Add(ctx context.Context, r Rule, override bool) (err error)

	// AddRules adds rules to the list atomically.  See [Store.AddRules].
	AddRules(ctx context.Context, rules []Rule, override bool) (err error)

	// ModifyRule replaces the rule with text oldText by r, keeping its
	// position.
	ModifyRule(ctx context.Context, oldText string, r Rule) (err error)

	// RemoveRule removes the rule with the given text.
	RemoveRule(ctx context.Context, text string) (err error)

	// RemoveAllRules removes all rules from the list.
	RemoveAllRules(ctx context.Context) (err error)

	// Reset replaces the list with the default rules for it.
	Reset(ctx context.Context) (err error)

	// AllRules returns a snapshot of the list.  The caller may modify the
	// returned slice.
	AllRules() (rules []Rule)
}
