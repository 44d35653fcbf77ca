package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry           *prometheus.Registry
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	VisitorsRegistered prometheus.Counter
	CEPLookups         *prometheus.CounterVec
	StatsComputations  *prometheus.CounterVec
}

// New creates the metrics on a dedicated registry so tests can build many.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visitantes_http_requests_total",
			Help: "HTTP requests by method, route, and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visitantes_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		VisitorsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visitantes_registered_total",
			Help: "Total number of visitors registered",
		}),
		CEPLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visitantes_cep_lookups_total",
			Help: "CEP lookups by outcome",
		}, []string{"outcome"}),
		StatsComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "visitantes_stats_computations_total",
			Help: "Dashboard aggregations, split by memo hits and recomputes",
		}, []string{"source"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.VisitorsRegistered,
		m.CEPLookups,
		m.StatsComputations,
	)
	return m
}

// ObserveCEPLookup increments the CEP lookup counter for an outcome.
func (m *Metrics) ObserveCEPLookup(outcome string) {
	m.CEPLookups.WithLabelValues(outcome).Inc()
}

// IncrementVisitorsRegistered increments the registrations counter by 1.
func (m *Metrics) IncrementVisitorsRegistered() {
	m.VisitorsRegistered.Inc()
}

// ObserveStats records whether a dashboard request was served from the memo.
func (m *Metrics) ObserveStats(cached bool) {
	source := "computed"
	if cached {
		source = "memo"
	}
	m.StatsComputations.WithLabelValues(source).Inc()
}
