// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the genesis tool server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// ToolBuckets defines histogram buckets suited for sandbox tool latencies,
// from fast local operations (10ms) to long remote code executions (120s).
var ToolBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genesis_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genesis_request_duration_seconds",
			Help:    "Request duration",
			Buckets: ToolBuckets,
		},
		[]string{"method"},
	)

	// InFlightRequests tracks the number of requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "genesis_requests_in_flight",
			Help: "Requests currently in flight",
		},
	)

	// SessionsStartedTotal counts sandbox sessions started, by kind.
	SessionsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genesis_sessions_started_total",
			Help: "Sandbox sessions started",
		},
		[]string{"kind"},
	)

	// SessionsStoppedTotal counts sandbox sessions stopped, by kind.
	SessionsStoppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genesis_sessions_stopped_total",
			Help: "Sandbox sessions stopped",
		},
		[]string{"kind"},
	)

	// AuthRejectedTotal counts requests rejected by the auth middleware.
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genesis_auth_rejected_total",
			Help: "Requests rejected by authentication or rate limiting",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		SessionsStartedTotal,
		SessionsStoppedTotal,
		AuthRejectedTotal,
	)
}
