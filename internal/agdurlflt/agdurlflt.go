// Package agdurlflt contains utilities for converting user rules into urlfilter
// rule lists.
package agdurlflt

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
)

// allowlistPrefix marks the exception rules.
const allowlistPrefix = "@@"

// AllowlistRule returns the exception rule for the allowlist entry text.  text
// is either a domain name or an exception rule, which is returned unchanged.
func AllowlistRule(text string) (rule string) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, allowlistPrefix) {
		return text
	}

	return allowlistPrefix + "||" + strings.TrimSuffix(text, ".") + "^$important"
}

// EnabledLen returns the length of the byte buffer necessary to write the
// enabled rules from lists, separated by a newline, to it.  The allowlist rules
// are estimated with the length of their exception form.
func EnabledLen(blocklist, allowlist []userrules.Rule) (l int) {
	for _, r := range blocklist {
		if r.Enabled {
			l += len(r.Text) + len("\n")
		}
	}

	for _, r := range allowlist {
		if r.Enabled {
			l += len(r.Text) + len("@@||^$important\n")
		}
	}

	return l
}

// EnabledToBytesLower writes lowercase versions of the enabled rules of
// blocklist and the exception rules of the enabled entries of allowlist to a
// byte slice and returns it.  Disabled rules are skipped.
//
// NOTE:  Do not use this for rules that can include dnsrewrite modifiers, since
// their DNS types are case-sensitive.
func EnabledToBytesLower(blocklist, allowlist []userrules.Rule) (b []byte) {
	l := EnabledLen(blocklist, allowlist)
	if l == 0 {
		return nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, l))
	for _, r := range blocklist {
		if r.Enabled {
			writeLower(buf, r.Text)
		}
	}

	for _, r := range allowlist {
		if r.Enabled {
			writeLower(buf, AllowlistRule(r.Text))
		}
	}

	return buf.Bytes()
}

// writeLower writes the lowercase version of s followed by a newline to buf.
func writeLower(buf *bytes.Buffer, s string) {
	for _, c := range s {
		_, _ = buf.WriteRune(unicode.ToLower(c))
	}

	_ = buf.WriteByte('\n')
}
