// Package metrics contains the Prometheus implementations of the metrics
// interfaces used in AdGuard User Rules.
package metrics

import (
	"fmt"
	"runtime"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the default namespace of the metrics.
const Namespace = "userrules"

// constants with the subsystem names that we use in our prometheus metrics.
const (
	subsystemApplication = "app"
	subsystemDNSFilter   = "dns_filter"
	subsystemKVStorage   = "kv_storage"
	subsystemRedisKV     = "redis"
	subsystemUserRules   = "lists"
)

// BuildInfo is the information about the build for [SetUpGauge].
type BuildInfo struct {
	Version   string
	BuildTime string
	Branch    string
	Revision  string
}

// SetUpGauge registers a gauge signaling that the service has been started in
// reg.
func SetUpGauge(namespace string, reg prometheus.Registerer, info *BuildInfo) (err error) {
	upGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "up",
		Namespace: namespace,
		Subsystem: subsystemApplication,
		Help: `A metric with a constant '1' value labeled by ` +
			`version and goversion from which the program was built.`,
		ConstLabels: prometheus.Labels{
			"version":   info.Version,
			"buildtime": info.BuildTime,
			"branch":    info.Branch,
			"revision":  info.Revision,
			"goversion": runtime.Version(),
		},
	})

	err = reg.Register(upGauge)
	if err != nil {
		return fmt.Errorf("registering metrics %q: %w", "up", err)
	}

	upGauge.Set(1)

	return nil
}

// BoolString returns "1" if cond is true and "0" otherwise.
func BoolString(cond bool) (s string) {
	if cond {
		return "1"
	}

	return "0"
}

// IncrementCond increments trueCtr if cond is true and falseCtr otherwise.
func IncrementCond(cond bool, trueCtr, falseCtr prometheus.Counter) {
	if cond {
		trueCtr.Inc()
	} else {
		falseCtr.Inc()
	}
}

// register registers all collectors in reg.
func register(reg prometheus.Registerer, collectors container.KeyValues[string, prometheus.Collector]) (err error) {
	var errs []error
	for _, c := range collectors {
		err = reg.Register(c.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("registering metrics %q: %w", c.Key, err))
		}
	}

	return errors.Join(errs...)
}
