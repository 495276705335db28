package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClientRequestsTotal counts backend requests by method, route and status class.
	ClientRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writex_client_requests_total",
		Help: "Total number of backend requests issued by the client",
	}, []string{"method", "route", "status"})

	// ClientRequestLatency records backend request latency by method and route.
	ClientRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "writex_client_request_latency_seconds",
		Help:    "Backend request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SessionTransitionsTotal counts session store transitions by resulting status.
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writex_session_transitions_total",
		Help: "Total number of session status transitions",
	}, []string{"status"})

	// BusyRejectionsTotal counts mutations rejected because one was already in flight.
	BusyRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writex_busy_rejections_total",
		Help: "Total number of re-entrant mutations rejected by controllers",
	}, []string{"controller"})
)

// ObserveRequest records one finished backend request.
func ObserveRequest(method, route, status string, start time.Time) {
	ClientRequestsTotal.WithLabelValues(method, route, status).Inc()
	ClientRequestLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
