package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the change request workflow
type Metrics struct {
	RequestsCreated  *prometheus.CounterVec
	RequestsResolved *prometheus.CounterVec
	MutationFailures *prometheus.CounterVec
	ClearedRequests  prometheus.Counter
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetlog_change_requests_created_total",
			Help: "Total number of change requests submitted",
		}, []string{"type"}),
		RequestsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetlog_change_requests_resolved_total",
			Help: "Total number of change requests resolved, by outcome",
		}, []string{"type", "outcome"}),
		MutationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetlog_change_request_mutation_failures_total",
			Help: "Approved change requests whose change could not be applied",
		}, []string{"type"}),
		ClearedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetlog_change_requests_cleared_total",
			Help: "Processed change requests removed by clear operations",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetlog_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetlog_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) RequestCreated(requestType string) {
	m.RequestsCreated.WithLabelValues(requestType).Inc()
}

func (m *Metrics) RequestResolved(requestType string, outcome string) {
	m.RequestsResolved.WithLabelValues(requestType, outcome).Inc()
}

func (m *Metrics) MutationFailed(requestType string) {
	m.MutationFailures.WithLabelValues(requestType).Inc()
}

func (m *Metrics) RequestsCleared(count int64) {
	m.ClearedRequests.Add(float64(count))
}
