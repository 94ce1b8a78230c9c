package agdcache_test

import "time"

// Common constants for tests.
const (
	testKey   = "rules:dns_blocklist"
	testVal   = 42
	absentKey = "rules:absent"

	testExpiration = 100 * time.Millisecond
)
