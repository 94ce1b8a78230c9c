package listjson_test

import (
	"testing"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/internal/listjson"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := listjson.Encode(nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"version":1,"rules":[]}`, string(data))

	data, err = listjson.Encode([]userrules.Rule{{Text: "||example.org^", Enabled: false}})
	require.NoError(t, err)

	assert.JSONEq(t, `{"version":1,"rules":[{"text":"||example.org^","enabled":false}]}`, string(data))
}

func TestEncode_text(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		wantErrMsg string
	}{{
		name:       "ascii",
		text:       "||example.org^",
		wantErrMsg: "",
	}, {
		name:       "non_ascii",
		text:       "||пример.рф^ # 例",
		wantErrMsg: "",
	}, {
		name:       "invalid_utf8",
		text:       "||example.org^\xff",
		wantErrMsg: "rule at index 1: rule text is not valid utf-8",
	}, {
		name:       "truncated_rune",
		text:       "||пример\xd0",
		wantErrMsg: "rule at index 1: rule text is not valid utf-8",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			want := []userrules.Rule{userrules.NewRule("a"), userrules.NewRule(tc.text)}

			data, err := listjson.Encode(want)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
			if tc.wantErrMsg != "" {
				assert.ErrorIs(t, err, listjson.ErrInvalidUTF8)
				assert.Nil(t, data)

				return
			}

			got, err := listjson.Decode(data)
			require.NoError(t, err)

			assert.Equal(t, want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name       string
		in         string
		wantErrMsg string
		want       []userrules.Rule
	}{{
		name:       "success",
		in:         `{"version":1,"rules":[{"text":"a","enabled":true},{"text":"b"}]}`,
		wantErrMsg: "",
		want:       []userrules.Rule{{Text: "a", Enabled: true}, {Text: "b", Enabled: false}},
	}, {
		name:       "bad_version",
		in:         `{"version":2,"rules":[]}`,
		wantErrMsg: "unsupported list version: got 2, want 1",
		want:       nil,
	}, {
		name:       "bad_json",
		in:         `{`,
		wantErrMsg: "decoding json: unexpected end of JSON input",
		want:       nil,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := listjson.Decode([]byte(tc.in))
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)

			assert.Equal(t, tc.want, got)
		})
	}
}
