// Package middleware contains shared Gin middleware used by the portal's HTTP
// layer.
//
// This file exposes Prometheus instrumentation for the portal. Metrics()
// measures request counts, latencies, in-flight concurrency and response
// sizes with bounded labels:
//
//   - method: HTTP method verb (GET/POST/…)
//   - path:   the registered Gin route (e.g. /api/v1/history/:id), or
//     "unmatched" when no route matched
//   - status: numeric status code as a string (e.g. "200", "422")
//
// ObserveTopUp and the events gauge cover the business side: how many
// purchases succeeded, were declined or never reached the backend, and how
// many logout listeners are connected.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedPath labels requests that hit no registered route.
const unmatchedPath = "unmatched"

// Top-up outcomes reported through ObserveTopUp.
const (
	TopUpSuccess  = "success"
	TopUpDeclined = "declined"
	TopUpInvalid  = "invalid"
	TopUpFailed   = "failed"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// status is left out to keep the histogram small.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: []float64{200, 500, 1 << 10, 2 << 10, 5 << 10, 10 << 10, 25 << 10, 50 << 10, 100 << 10, 1 << 20},
		},
		[]string{"method", "path"},
	)

	topUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_requests_total",
			Help: "Top-up submissions by outcome.",
		},
		[]string{"outcome"},
	)

	eventListeners = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "topup_event_listeners",
			Help: "Connected logout event listeners.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, topUps, eventListeners)
}

// ObserveTopUp counts one top-up submission with the given outcome.
func ObserveTopUp(outcome string) {
	topUps.WithLabelValues(outcome).Inc()
}

// TrackListener increments the listener gauge and returns the matching
// decrement.
func TrackListener() (done func()) {
	eventListeners.Inc()
	return eventListeners.Dec
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
//	r := gin.New()
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		method := c.Request.Method

		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		// size is -1 for hijacked connections such as the events websocket.
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
