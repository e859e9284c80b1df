package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records outcomes of calls made through the shared API client.
type ClientMetrics struct {
	duration       *prometheus.HistogramVec
	failures       *prometheus.CounterVec
	sessionExpired prometheus.Counter
	forbidden      prometheus.Counter
}

// NewClientMetrics registers the API client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_failures",
		Help: "Failed backend API requests.",
	}, []string{"operation"})
	sessionExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_session_expired_total",
		Help: "Requests rejected because the session expired.",
	})
	forbidden := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "api_forbidden_total",
		Help: "Requests rejected for insufficient permissions.",
	})
	reg.MustRegister(duration, failures, sessionExpired, forbidden)
	return &ClientMetrics{
		duration:       duration,
		failures:       failures,
		sessionExpired: sessionExpired,
		forbidden:      forbidden,
	}
}

// ObserveDuration records the duration for the named operation.
func (c *ClientMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the named operation.
func (c *ClientMetrics) IncFailure(operation string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncSessionExpired counts a detected session expiry.
func (c *ClientMetrics) IncSessionExpired() {
	if c == nil || c.sessionExpired == nil {
		return
	}
	c.sessionExpired.Inc()
}

// IncForbidden counts a permission rejection.
func (c *ClientMetrics) IncForbidden() {
	if c == nil || c.forbidden == nil {
		return
	}
	c.forbidden.Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
