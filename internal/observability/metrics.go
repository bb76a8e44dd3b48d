package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the weather pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: provider={forecast,current}, outcome={success,empty,error}
	FetchDuration *prometheus.HistogramVec // labels: provider

	ReportsBuilt     prometheus.Counter
	HazardousReports prometheus.Counter

	DispatchAttempts    *prometheus.CounterVec // labels: transport={relay,webhook}, outcome={delivered,failed}
	NotificationPending prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_notify",
			Name:      "fetch_requests_total",
			Help:      "Upstream fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_notify",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		ReportsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_notify",
			Name:      "reports_built_total",
			Help:      "Canonical weather reports produced by aggregation.",
		}),
		HazardousReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_notify",
			Name:      "hazardous_reports_total",
			Help:      "Reports whose status matched the hazard vocabulary.",
		}),
		DispatchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_notify",
			Name:      "dispatch_attempts_total",
			Help:      "Notification dispatch attempts by transport and outcome.",
		}, []string{"transport", "outcome"}),
		NotificationPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_notify",
			Name:      "notification_pending",
			Help:      "1 while a report awaits explicit send confirmation.",
		}),
	}

	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.ReportsBuilt,
		m.HazardousReports,
		m.DispatchAttempts,
		m.NotificationPending,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_notify", Name: "fetch_requests_total"}, []string{"provider", "outcome"}),
		FetchDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_notify", Name: "fetch_duration_seconds"}, []string{"provider"}),
		ReportsBuilt:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_notify", Name: "reports_built_total"}),
		HazardousReports:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_notify", Name: "hazardous_reports_total"}),
		DispatchAttempts:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_notify", Name: "dispatch_attempts_total"}, []string{"transport", "outcome"}),
		NotificationPending: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_notify", Name: "notification_pending"}),
	}
}
