// Package listjson contains the JSON encoding of the persisted rule lists
// shared by the storage implementations.
package listjson

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
)

// Version is the current version of the persisted list document.
//
// NOTE: Increment it when changing the fields of [document].
const Version uint = 1

// ErrVersion is returned by [Decode] when the document has an unsupported
// version.
const ErrVersion errors.Error = "unsupported list version"

// ErrInvalidUTF8 is returned by [Encode] when the text of a rule is not valid
// UTF-8.
const ErrInvalidUTF8 errors.Error = "rule text is not valid utf-8"

// document is the persisted form of a single list.
type document struct {
	Rules   []userrules.Rule `json:"rules"`
	Version uint             `json:"version"`
}

// Encode returns the JSON document containing rules.  The text of each rule
// must be valid UTF-8.
func Encode(rules []userrules.Rule) (data []byte, err error) {
	if rules == nil {
		rules = []userrules.Rule{}
	}

	for i, r := range rules {
		if !utf8.ValidString(r.Text) {
			return nil, fmt.Errorf("rule at index %d: %w", i, ErrInvalidUTF8)
		}
	}

	data, err = json.Marshal(&document{
		Rules:   rules,
		Version: Version,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	return data, nil
}

// Decode returns the rules from the JSON document in data.
func Decode(data []byte) (rules []userrules.Rule, err error) {
	doc := &document{}
	err = json.Unmarshal(data, doc)
	if err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	if doc.Version != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersion, doc.Version, Version)
	}

	return doc.Rules, nil
}
