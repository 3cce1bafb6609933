package metrics

import (
	"errors"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Reconciliation run outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ReconciliationObserver exports contract reconciliation metrics to Prometheus.
// A nil observer is valid and records nothing.
type ReconciliationObserver struct {
	runs         *promclient.CounterVec
	runDuration  *promclient.HistogramVec
	expired      promclient.Counter
	expiringSoon promclient.Gauge
}

// NewReconciliationObserver registers the reconciliation collectors on reg.
// Collectors already registered under the same name are reused.
func NewReconciliationObserver(namespace string, reg promclient.Registerer) (*ReconciliationObserver, error) {
	if namespace == "" {
		namespace = "gymflow"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	runs := promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "runs_total",
		Help:      "Count of contract reconciliation runs by trigger and outcome.",
	}, []string{"trigger", "outcome"})
	runDuration := promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "run_duration_seconds",
		Help:      "Latency of contract reconciliation runs.",
		Buckets:   promclient.DefBuckets,
	}, []string{"trigger"})
	expired := promclient.NewCounter(promclient.CounterOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "contracts_expired_total",
		Help:      "Cumulative number of contracts moved to expired by reconciliation.",
	})
	expiringSoon := promclient.NewGauge(promclient.GaugeOpts{
		Namespace: namespace,
		Subsystem: "reconciliation",
		Name:      "contracts_expiring_soon",
		Help:      "Active contracts ending inside the expiring-soon window at the last run.",
	})

	var err error
	o := &ReconciliationObserver{}
	if o.runs, err = register(reg, runs); err != nil {
		return nil, fmt.Errorf("register reconciliation runs counter: %w", err)
	}
	if o.runDuration, err = register(reg, runDuration); err != nil {
		return nil, fmt.Errorf("register reconciliation histogram: %w", err)
	}
	if o.expired, err = register(reg, expired); err != nil {
		return nil, fmt.Errorf("register expired contracts counter: %w", err)
	}
	if o.expiringSoon, err = register(reg, expiringSoon); err != nil {
		return nil, fmt.Errorf("register expiring soon gauge: %w", err)
	}
	return o, nil
}

// RecordRun tracks one reconciliation run
func (o *ReconciliationObserver) RecordRun(trigger string, duration time.Duration, expired, expiringSoon int64, err error) {
	if o == nil {
		return
	}
	o.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if err != nil {
		o.runs.WithLabelValues(trigger, OutcomeFailure).Inc()
		return
	}
	o.runs.WithLabelValues(trigger, OutcomeSuccess).Inc()
	o.expired.Add(float64(expired))
	o.expiringSoon.Set(float64(expiringSoon))
}

func register[T promclient.Collector](reg promclient.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
