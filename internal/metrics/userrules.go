package metrics

import (
	"context"
	"time"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/container"
	"github.com/prometheus/client_golang/prometheus"
)

// UserRules is the Prometheus-based implementation of the [userrules.Metrics]
// interface.
type UserRules struct {
	// rulesNum is a gauge with the number of rules in each list.
	rulesNum *prometheus.GaugeVec

	// mutations is a counter of the mutating operations by list, operation,
	// and result.
	mutations *prometheus.CounterVec

	// saveDuration is a histogram with the duration of saving the lists.
	saveDuration *prometheus.HistogramVec

	// notifyErrors is a counter of the failed notifications by list.
	notifyErrors *prometheus.CounterVec
}

// NewUserRules registers the user rules metrics in reg and returns a properly
// initialized *UserRules.
func NewUserRules(namespace string, reg prometheus.Registerer) (m *UserRules, err error) {
	const (
		rulesNum     = "rules_total"
		mutations    = "mutations_total"
		saveDuration = "save_duration_seconds"
		notifyErrors = "notify_errors_total"
	)

	m = &UserRules{
		rulesNum: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:      rulesNum,
			Subsystem: subsystemUserRules,
			Namespace: namespace,
			Help:      "The number of rules in the list.",
		}, []string{"list"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      mutations,
			Subsystem: subsystemUserRules,
			Namespace: namespace,
			Help: "Total number of mutating operations on the list. " +
				"Label success is 1 for committed operations and 0 otherwise.",
		}, []string{"list", "op", "success"}),
		saveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:      saveDuration,
			Subsystem: subsystemUserRules,
			Namespace: namespace,
			Help:      "Time spent saving the list, in seconds.",
			Buckets:   []float64{0.000_100, 0.001, 0.010, 0.100, 1},
		}, []string{"list"}),
		notifyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      notifyErrors,
			Subsystem: subsystemUserRules,
			Namespace: namespace,
			Help:      "Total number of failed notifications after a change of the list.",
		}, []string{"list"}),
	}

	err = register(reg, container.KeyValues[string, prometheus.Collector]{{
		Key:   rulesNum,
		Value: m.rulesNum,
	}, {
		Key:   mutations,
		Value: m.mutations,
	}, {
		Key:   saveDuration,
		Value: m.saveDuration,
	}, {
		Key:   notifyErrors,
		Value: m.notifyErrors,
	}})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// type check
var _ userrules.Metrics = (*UserRules)(nil)

// SetRulesNum implements the [userrules.Metrics] interface for *UserRules.
func (m *UserRules) SetRulesNum(_ context.Context, id userrules.ID, n int) {
	m.rulesNum.WithLabelValues(string(id)).Set(float64(n))
}

// ObserveMutation implements the [userrules.Metrics] interface for *UserRules.
func (m *UserRules) ObserveMutation(
	_ context.Context,
	id userrules.ID,
	op string,
	dur time.Duration,
	err error,
) {
	m.mutations.WithLabelValues(string(id), op, BoolString(err == nil)).Inc()
	if dur > 0 {
		m.saveDuration.WithLabelValues(string(id)).Observe(dur.Seconds())
	}
}

// IncrementNotifyErrors implements the [userrules.Metrics] interface for
// *UserRules.
func (m *UserRules) IncrementNotifyErrors(_ context.Context, id userrules.ID) {
	m.notifyErrors.WithLabelValues(string(id)).Inc()
}
