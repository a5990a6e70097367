// Package metrics exposes Prometheus counters for the HTTP surface and the
// booking workflow.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laundry_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "laundry_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	bookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laundry_bookings_created_total",
		Help: "Bookings created through the customer endpoint",
	})

	bookingActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laundry_booking_actions_total",
		Help: "Lifecycle actions applied to bookings",
	}, []string{"action"})

	rejectedTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laundry_booking_rejected_transitions_total",
		Help: "Lifecycle actions rejected as illegal or blocked",
	})
)

// RecordBookingCreated increments the bookings created counter
func RecordBookingCreated() {
	bookingsCreated.Inc()
}

// RecordBookingAction increments the counter for an applied lifecycle action
func RecordBookingAction(action string) {
	bookingActions.WithLabelValues(action).Inc()
}

// RecordRejectedTransition increments the rejected transition counter
func RecordRejectedTransition() {
	rejectedTransitions.Inc()
}

// Middleware records request counts and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape endpoint handler
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
