// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reserve outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeFull         = "full"
	OutcomeCarrierLimit = "carrier_limit"
	OutcomeInactive     = "inactive"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// which keeps tests free of registry plumbing.
type Metrics struct {
	reservations         *prometheus.CounterVec
	releases             *prometheus.CounterVec
	capacityAdjustments  prometheus.Counter
	advisorFallbacks     *prometheus.CounterVec
	reconciliationDrift  prometheus.Gauge
	reconciliationFixes  prometheus.Counter
	expiredSlots         prometheus.Counter
	httpRequestDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "releases_total",
			Help:      "Released units by kind (release or compensation).",
		}, []string{"kind"}),
		capacityAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "capacity_adjustments_total",
			Help:      "Successful capacity adjustments.",
		}),
		advisorFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "fallbacks_total",
			Help:      "Rankings served by the local heuristic, by reason.",
		}, []string{"reason"}),
		reconciliationDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "drifting_slots",
			Help:      "Slots whose availability disagrees with their bound orders on two consecutive runs.",
		}),
		reconciliationFixes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciliation",
			Name:      "corrections_total",
			Help:      "Availability corrections written by reconciliation.",
		}),
		expiredSlots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expiry",
			Name:      "deactivated_slots_total",
			Help:      "Slots deactivated after their window ended.",
		}),
		httpRequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		m.reservations,
		m.releases,
		m.capacityAdjustments,
		m.advisorFallbacks,
		m.reconciliationDrift,
		m.reconciliationFixes,
		m.expiredSlots,
		m.httpRequestDurations,
	)

	return m
}

func (m *Metrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRelease(compensating bool) {
	if m == nil {
		return
	}
	kind := "release"
	if compensating {
		kind = "compensation"
	}
	m.releases.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveCapacityAdjustment() {
	if m == nil {
		return
	}
	m.capacityAdjustments.Inc()
}

func (m *Metrics) ObserveAdvisorFallback(reason string) {
	if m == nil {
		return
	}
	m.advisorFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetReconciliationDrift(n int) {
	if m == nil {
		return
	}
	m.reconciliationDrift.Set(float64(n))
}

func (m *Metrics) ObserveReconciliationFix() {
	if m == nil {
		return
	}
	m.reconciliationFixes.Inc()
}

func (m *Metrics) ObserveExpiredSlots(n int64) {
	if m == nil {
		return
	}
	m.expiredSlots.Add(float64(n))
}

func (m *Metrics) ObserveHTTPRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestDurations.WithLabelValues(route, method, status).Observe(seconds)
}
