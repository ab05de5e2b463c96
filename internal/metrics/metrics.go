// Package metrics registers Prometheus collectors for Quantum
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantum_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantum_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Market data metrics
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantum_provider_requests_total",
			Help: "Total number of market data provider requests",
		},
		[]string{"endpoint", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantum_provider_request_duration_seconds",
			Help:    "Market data provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Portfolio metrics
	RefreshedPositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantum_refreshed_positions_total",
			Help: "Positions handled by a refresh pass, by outcome",
		},
		[]string{"outcome"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantum_refresh_duration_seconds",
			Help:    "Duration of a full refresh pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	AnalyticsTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantum_analytics_triggers_total",
			Help: "Risk-parity analytics job dispatches",
		},
		[]string{"status"},
	)
)

// Refresh outcomes
const (
	OutcomeFresh   = "fresh"
	OutcomeUpdated = "updated"
	OutcomeFailed  = "failed"
)

// RecordProviderRequest records one provider call.
func RecordProviderRequest(endpoint string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// RecordRefresh records the outcome counts of one refresh pass.
func RecordRefresh(fresh, updated, failed int, start time.Time) {
	RefreshedPositionsTotal.WithLabelValues(OutcomeFresh).Add(float64(fresh))
	RefreshedPositionsTotal.WithLabelValues(OutcomeUpdated).Add(float64(updated))
	RefreshedPositionsTotal.WithLabelValues(OutcomeFailed).Add(float64(failed))
	RefreshDuration.Observe(time.Since(start).Seconds())
}
