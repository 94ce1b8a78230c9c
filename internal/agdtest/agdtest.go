// Package agdtest contains simple mocks for common interfaces and other test
// utilities.
package agdtest

import (
	"fmt"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// NewRules returns n enabled rules with the texts "<prefix>0", "<prefix>1", and
// so on.
func NewRules(prefix string, n int) (rules []userrules.Rule) {
	rules = make([]userrules.Rule, 0, n)
	for i := range n {
		rules = append(rules, userrules.NewRule(fmt.Sprintf("%s%d", prefix, i)))
	}

	return rules
}
