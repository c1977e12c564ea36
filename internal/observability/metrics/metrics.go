package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solkant_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solkant_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solkant_http_requests_in_flight",
		Help: "Number of HTTP requests being served",
	})

	// SignIns counts sign-in attempts by provider and result.
	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solkant_signin_total",
		Help: "Count of sign-in attempts by provider and result",
	}, []string{"provider", "result"})

	// BusinessProvisioning counts automatic business creation by source and result.
	BusinessProvisioning = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solkant_business_provisioning_total",
		Help: "Count of business provisioning attempts by source and result",
	}, []string{"source", "result"})

	// TenantResolutions counts tenant lookups by result.
	TenantResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solkant_tenant_resolution_total",
		Help: "Count of tenant resolutions by result",
	}, []string{"result"})

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solkant_rate_limited_total",
		Help: "Count of requests rejected by rate limiting",
	}, []string{"route"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSignIn records a sign-in attempt.
func ObserveSignIn(provider, result string) {
	SignIns.WithLabelValues(provider, result).Inc()
}

// ObserveBusinessProvisioning records the outcome of an automatic business creation.
func ObserveBusinessProvisioning(source, result string) {
	BusinessProvisioning.WithLabelValues(source, result).Inc()
}

// ObserveTenantResolution records a tenant lookup (hit, miss, none, error).
func ObserveTenantResolution(result string) {
	TenantResolutions.WithLabelValues(result).Inc()
}

// ObserveRateLimited records a throttled request.
func ObserveRateLimited(route string) {
	rateLimited.WithLabelValues(route).Inc()
}
