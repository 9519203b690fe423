package router

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridd",
			Subsystem: "router",
			Name:      "requests_total",
			Help:      "Requests served, labeled by serving mode or error",
		},
		[]string{"mode"},
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridd",
			Subsystem: "router",
			Name:      "fallbacks_total",
			Help:      "One-hop backend fallbacks taken",
		},
		[]string{"from", "to"},
	)

	backendSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridd",
			Subsystem: "router",
			Name:      "backend_seconds",
			Help:      "Backend call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, fallbacksTotal, backendSeconds)
}
