package core

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded by MetricsRecorder implementations.
const (
	OutcomeAccepted       = "accepted"
	OutcomeDisabled       = "disabled"
	OutcomeCapacity       = "capacity"
	OutcomeFiltered       = "filtered"
	OutcomeOwned          = "owned"
	OutcomeInvalid        = "invalid"
	OutcomeRemoved        = "removed"
	OutcomeEmpty          = "empty"
	OutcomeTransferred    = "transferred"
	OutcomeRemoveFailed   = "remove_failed"
	OutcomeRolledBack     = "rolled_back"
	OutcomeRollbackFailed = "rollback_failed"
)

// MetricsRecorder receives container activity.
type MetricsRecorder interface {
	ObserveAdd(containerType, outcome string)
	ObserveRemove(containerType, outcome string)
	ObserveTransfer(outcome string)
	SetRegisteredRoots(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAdd(string, string)    {}
func (noopMetrics) ObserveRemove(string, string) {}
func (noopMetrics) ObserveTransfer(string)       {}
func (noopMetrics) SetRegisteredRoots(int)       {}

// NoopMetrics returns a recorder that discards everything.
func NoopMetrics() MetricsRecorder { return noopMetrics{} }

// PrometheusMetrics exports container activity as Prometheus collectors.
type PrometheusMetrics struct {
	adds      *prometheus.CounterVec
	removes   *prometheus.CounterVec
	transfers *prometheus.CounterVec
	roots     prometheus.Gauge
}

// NewPrometheusMetrics builds the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		adds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "item_adds_total",
			Help:      "Add attempts by container type and outcome.",
		}, []string{"container_type", "outcome"}),
		removes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "item_removes_total",
			Help:      "Remove attempts by container type and outcome.",
		}, []string{"container_type", "outcome"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inventory",
			Name:      "transfers_total",
			Help:      "Transfers by outcome.",
		}, []string{"outcome"}),
		roots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "inventory",
			Name:      "registered_roots",
			Help:      "Root containers currently tracked by the persistence registry.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.adds, m.removes, m.transfers, m.roots} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("register inventory metrics: %w", err)
			}
		}
	}
	return m, nil
}

// ObserveAdd implements MetricsRecorder.
func (m *PrometheusMetrics) ObserveAdd(containerType, outcome string) {
	m.adds.WithLabelValues(containerType, outcome).Inc()
}

// ObserveRemove implements MetricsRecorder.
func (m *PrometheusMetrics) ObserveRemove(containerType, outcome string) {
	m.removes.WithLabelValues(containerType, outcome).Inc()
}

// ObserveTransfer implements MetricsRecorder.
func (m *PrometheusMetrics) ObserveTransfer(outcome string) {
	m.transfers.WithLabelValues(outcome).Inc()
}

// SetRegisteredRoots implements MetricsRecorder.
func (m *PrometheusMetrics) SetRegisteredRoots(n int) {
	m.roots.Set(float64(n))
}

// Adds exposes the add counter vector for inspection.
func (m *PrometheusMetrics) Adds() *prometheus.CounterVec { return m.adds }

// Transfers exposes the transfer counter vector for inspection.
func (m *PrometheusMetrics) Transfers() *prometheus.CounterVec { return m.transfers }

// Roots exposes the registered roots gauge for inspection.
func (m *PrometheusMetrics) Roots() prometheus.Gauge { return m.roots }
