package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/kvstorage"
	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// KVStorage is the Prometheus-based implementation of the [kvstorage.Metrics]
// interface.
type KVStorage struct {
	// loadDuration is a histogram with the duration of loading a list.
	loadDuration prometheus.Observer

	// saveDuration is a histogram with the duration of saving a list.
	saveDuration prometheus.Observer

	// hits is a counter of the loads that found a stored list.
	hits prometheus.Counter

	// misses is a counter of the loads that found no stored list.
	misses prometheus.Counter
}

// NewKVStorage registers the key-value rules storage metrics in reg and
// returns a properly initialized *KVStorage.
func NewKVStorage(namespace string, reg prometheus.Registerer) (m *KVStorage, err error) {
	const (
		opDurationName = "op_duration_seconds"
		lookupsName    = "lookups_total"
	)

	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      opDurationName,
		Subsystem: subsystemKVStorage,
		Namespace: namespace,
		Help: "Duration of a single storage operation. " +
			"Label op is the corresponding operation name.",
		Buckets: []float64{0.000_010, 0.000_100, 0.001, 0.010, 0.100, 1},
	}, []string{"op"})

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      lookupsName,
		Subsystem: subsystemKVStorage,
		Namespace: namespace,
		Help: "Total number of list loads. " +
			"Label hit is the lookup result, either 1 for hit or 0 for miss.",
	}, []string{"hit"})

	m = &KVStorage{
		loadDuration: opDuration.WithLabelValues(kvstorage.OpLoad),
		saveDuration: opDuration.WithLabelValues(kvstorage.OpSave),
		hits:         lookups.WithLabelValues("1"),
		misses:       lookups.WithLabelValues("0"),
	}

	err = register(reg, container.KeyValues[string, prometheus.Collector]{{
		Key:   opDurationName,
		Value: opDuration,
	}, {
		Key:   lookupsName,
		Value: lookups,
	}})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// type check
var _ kvstorage.Metrics = (*KVStorage)(nil)

// ObserveOperation implements the [kvstorage.Metrics] interface for
// *KVStorage.
func (m *KVStorage) ObserveOperation(_ context.Context, op string, dur time.Duration) {
	switch op {
	case kvstorage.OpLoad:
		m.loadDuration.Observe(dur.Seconds())
	case kvstorage.OpSave:
		m.saveDuration.Observe(dur.Seconds())
	default:
		panic(fmt.Errorf("operation: %w: %q", errors.ErrBadEnumValue, op))
	}
}

// IncrementLookups implements the [kvstorage.Metrics] interface for
// *KVStorage.
func (m *KVStorage) IncrementLookups(_ context.Context, hit bool) {
	IncrementCond(hit, m.hits, m.misses)
}
