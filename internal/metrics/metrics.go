// Package metrics exposes Prometheus instrumentation for the HTTP layer
// and workflow counters.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestCounter counts requests by method, route and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_api_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes request latency by method and route
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_api_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LeadConversionCounter counts lead conversions
	LeadConversionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_api_lead_conversions_total",
			Help: "Total number of leads converted to deals",
		},
	)

	// DealClosedCounter counts closed deals by outcome
	DealClosedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_api_deals_closed_total",
			Help: "Total number of deals closed, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LeadConversionCounter)
	prometheus.MustRegister(DealClosedCounter)
}

// Handler returns the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
