package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "thermolab"

// labMetrics are the Prometheus collectors served on /metrics. Each Server
// owns its registry so tests can run servers side by side.
type labMetrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	logins       *prometheus.CounterVec
	toggles      *prometheus.CounterVec
	operations   *prometheus.CounterVec
	attacks      *prometheus.CounterVec
	dosDelay     prometheus.Histogram
}

func newLabMetrics(thermostats func() int, auditDropped func() uint64) *labMetrics {
	m := &labMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome and whether validation was on.",
		}, []string{"outcome", "validated"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "security_updates_total",
			Help:      "Security toggle updates by source.",
		}, []string{"source"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "thermostat_operations_total",
			Help:      "Thermostat registry operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		attacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attacks_total",
			Help:      "Simulated attacks by kind and outcome.",
		}, []string{"kind", "outcome"}),
		dosDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "dos_delay_seconds",
			Help:      "Delay injected by unblocked DoS simulations.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.5, 0.7, 1, 1.5},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.logins,
		m.toggles,
		m.operations,
		m.attacks,
		m.dosDelay,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "thermostats",
			Help:      "Thermostats currently registered.",
		}, func() float64 { return float64(thermostats()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "audit_dropped_total",
			Help:      "Audit entries dropped because the queue was full.",
		}, func() float64 { return float64(auditDropped()) }),
	)
	return m
}
