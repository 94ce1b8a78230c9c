package metrics

import (
	"context"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/protection"
	"github.com/AdguardTeam/golibs/container"
	"github.com/prometheus/client_golang/prometheus"
)

// DNSFilter is the Prometheus-based implementation of the
// [protection.DNSFilterMetrics] interface.
type DNSFilter struct {
	// compileDuration is a histogram with the duration of the compilations.
	compileDuration prometheus.Histogram

	// rulesNum is a gauge with the number of rules in the compiled filter.
	rulesNum prometheus.Gauge

	// hits is a counter of the result cache hits.
	hits prometheus.Counter

	// misses is a counter of the result cache misses.
	misses prometheus.Counter
}

// NewDNSFilter registers the DNS filter metrics in reg and returns a properly
// initialized *DNSFilter.
func NewDNSFilter(namespace string, reg prometheus.Registerer) (m *DNSFilter, err error) {
	const (
		compileDuration = "compile_duration_seconds"
		rulesNum        = "rules_total"
		cacheLookups    = "cache_lookups_total"
	)

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      cacheLookups,
		Subsystem: subsystemDNSFilter,
		Namespace: namespace,
		Help: "Total number of the result cache lookups. " +
			"Label hit is the lookup result, either 1 for hit or 0 for miss.",
	}, []string{"hit"})

	m = &DNSFilter{
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:      compileDuration,
			Subsystem: subsystemDNSFilter,
			Namespace: namespace,
			Help:      "Time spent compiling the filter, in seconds.",
			Buckets:   []float64{0.001, 0.010, 0.100, 1, 10},
		}),
		rulesNum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      rulesNum,
			Subsystem: subsystemDNSFilter,
			Namespace: namespace,
			Help:      "The number of rules in the compiled filter.",
		}),
		hits:   lookups.WithLabelValues("1"),
		misses: lookups.WithLabelValues("0"),
	}

	err = register(reg, container.KeyValues[string, prometheus.Collector]{{
		Key:   compileDuration,
		Value: m.compileDuration,
	}, {
		Key:   rulesNum,
		Value: m.rulesNum,
	}, {
		Key:   cacheLookups,
		Value: lookups,
	}})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// type check
var _ protection.DNSFilterMetrics = (*DNSFilter)(nil)

// ObserveCompile implements the [protection.DNSFilterMetrics] interface for
// *DNSFilter.
func (m *DNSFilter) ObserveCompile(_ context.Context, dur time.Duration, rulesNum int) {
	m.compileDuration.Observe(dur.Seconds())
	m.rulesNum.Set(float64(rulesNum))
}

// IncrementLookups implements the [protection.DNSFilterMetrics] interface for
// *DNSFilter.
func (m *DNSFilter) IncrementLookups(_ context.Context, hit bool) {
	IncrementCond(hit, m.hits, m.misses)
}
