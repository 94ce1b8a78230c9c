package cmd

import (
	"testing"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_Validate(t *testing.T) {
	testCases := []struct {
		env     map[string]string
		wantErr error
		name    string
	}{{
		env:     map[string]string{},
		wantErr: nil,
		name:    "default",
	}, {
		env: map[string]string{
			"KV_TYPE":    kvTypeRedis,
			"REDIS_ADDR": "localhost:6379",
		},
		wantErr: nil,
		name:    "redis",
	}, {
		env: map[string]string{
			"KV_TYPE":        kvTypeRedis,
			"REDIS_ADDR":     "localhost:6379",
			"REDIS_DB_INDEX": "-1",
		},
		wantErr: errors.ErrOutOfRange,
		name:    "redis_bad_index",
	}, {
		env: map[string]string{
			"KV_TYPE":       kvTypeConsul,
			"CONSUL_KV_URL": "http://consul.example:8500/v1/kv/userrules",
		},
		wantErr: nil,
		name:    "consul",
	}, {
		env: map[string]string{
			"KV_TYPE": "bbolt",
		},
		wantErr: errors.ErrBadEnumValue,
		name:    "bad_kv_type",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("RULES_DIR", t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			envs, err := parseEnvironment()
			require.NoError(t, err)

			err = envs.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestEnvironment_Validate_missingRulesDir(t *testing.T) {
	t.Setenv("RULES_DIR", t.TempDir()+"/missing")

	envs, err := parseEnvironment()
	require.NoError(t, err)

	assert.Error(t, envs.Validate())
}
