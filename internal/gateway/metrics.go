package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint labels come from configuration, so cardinality stays bounded.
var (
	gatewayReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of requests sent to the top-up backend.",
		},
		[]string{"endpoint", "method", "status"},
	)

	gatewayLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of requests sent to the top-up backend in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

func init() {
	prometheus.MustRegister(gatewayReqs, gatewayLat)
}

// observe records one call. status 0 is a transport failure.
func observe(endpoint, method string, status int, d time.Duration) {
	gatewayReqs.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	gatewayLat.WithLabelValues(endpoint, method).Observe(d.Seconds())
}
