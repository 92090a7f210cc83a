package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PoliciesCreated     prometheus.Counter
	CoverageChecks      prometheus.Counter
	SweepTicks          prometheus.Counter
	SweepTickErrors     prometheus.Counter
	ExpirationsRecorded prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PoliciesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_policies_created_total",
			Help: "Total number of insurance policies created",
		}),
		CoverageChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_coverage_checks_total",
			Help: "Total number of insurance validity checks served",
		}),
		SweepTicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_sweep_ticks_total",
			Help: "Total number of expiration sweep ticks executed",
		}),
		SweepTickErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_sweep_tick_errors_total",
			Help: "Total number of sweep ticks that failed and will retry",
		}),
		ExpirationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "motorcover_policy_expirations_recorded_total",
			Help: "Total number of policy expirations durably recorded",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "motorcover_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
}
