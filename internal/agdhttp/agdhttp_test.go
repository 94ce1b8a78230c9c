package agdhttp_test

import (
	"time"

	"github.com/AdguardTeam/golibs/errors"
)

// Common Testing Constants And Variables

// testTimeout is the common timeout for tests.
const testTimeout = 1 * time.Second

// testSrv is the Server header value of a Consul agent for tests.
const testSrv = "consul/1.0"

// testError is the common error for tests.
const testError errors.Error = "test error"
