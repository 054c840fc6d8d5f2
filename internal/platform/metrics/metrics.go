package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the console.
type Metrics struct {
	GuardDecisions  *prometheus.CounterVec
	AuthFailures    prometheus.Counter
	SessionsIssued  prometheus.Counter
	SessionsRotated prometheus.Counter
	ForcedLogouts   prometheus.Counter

	TransitionRejections *prometheus.CounterVec
	CertificateUploads   prometheus.Counter

	BackendLatency  *prometheus.HistogramVec
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		GuardDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stampeo_admin_guard_decisions_total",
			Help: "Total number of access guard decisions, labeled by outcome",
		}, []string{"decision"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stampeo_admin_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		SessionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stampeo_admin_sessions_issued_total",
			Help: "Total number of sessions issued at login",
		}),
		SessionsRotated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stampeo_admin_sessions_rotated_total",
			Help: "Total number of session tokens rotated near expiry",
		}),
		ForcedLogouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stampeo_admin_forced_logouts_total",
			Help: "Total number of sessions invalidated for insufficient privilege",
		}),
		TransitionRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stampeo_admin_transition_rejections_total",
			Help: "Total number of rejected lifecycle transitions, labeled by resource",
		}, []string{"resource"}),
		CertificateUploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stampeo_admin_certificate_uploads_total",
			Help: "Total number of certificates uploaded to the pool",
		}),
		BackendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stampeo_admin_backend_latency_seconds",
			Help:    "Latency of backend API calls in seconds, labeled by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stampeo_admin_endpoint_latency_seconds",
			Help:    "Latency of console endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementGuardDecision increments the guard decision counter with an outcome label.
func (m *Metrics) IncrementGuardDecision(decision string) {
	m.GuardDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	m.AuthFailures.Inc()
}

func (m *Metrics) IncrementSessionsIssued() {
	m.SessionsIssued.Inc()
}

func (m *Metrics) IncrementSessionsRotated() {
	m.SessionsRotated.Inc()
}

func (m *Metrics) IncrementForcedLogouts() {
	m.ForcedLogouts.Inc()
}

// IncrementTransitionRejections records a rejected transition for a resource kind.
func (m *Metrics) IncrementTransitionRejections(resource string) {
	m.TransitionRejections.WithLabelValues(resource).Inc()
}

func (m *Metrics) IncrementCertificateUploads() {
	m.CertificateUploads.Inc()
}

// ObserveBackendLatency records the latency of a backend API call.
func (m *Metrics) ObserveBackendLatency(operation string, durationSeconds float64) {
	m.BackendLatency.WithLabelValues(operation).Observe(durationSeconds)
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
