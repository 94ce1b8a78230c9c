package protection

import (
	"context"
	"time"
)

// DNSFilterMetrics is an interface for collection of the statistics of
// [DNSFilter].
type DNSFilterMetrics interface {
	// ObserveCompile records the duration of a compilation and the resulting
	// number of rules.
	ObserveCompile(ctx context.Context, dur time.Duration, rulesNum int)

	// IncrementLookups increments the number of the result cache lookups.  hit
	// shows whether the lookup was a cache hit.
	IncrementLookups(ctx context.Context, hit bool)
}

// EmptyDNSFilterMetrics is the implementation of the [DNSFilterMetrics]
// interface that does nothing.
type EmptyDNSFilterMetrics struct{}

// type check
var _ DNSFilterMetrics = EmptyDNSFilterMetrics{}

// ObserveCompile implements the [DNSFilterMetrics] interface for
// EmptyDNSFilterMetrics.
func (EmptyDNSFilterMetrics) ObserveCompile(_ context.Context, _ time.Duration, _ int) {}

// IncrementLookups implements the [DNSFilterMetrics] interface for
// EmptyDNSFilterMetrics.
func (EmptyDNSFilterMetrics) IncrementLookups(_ context.Context, _ bool) {}
