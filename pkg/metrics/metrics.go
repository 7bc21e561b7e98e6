package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	ActiveNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ecs_daemonset_active_nodes",
			Help: "Number of ACTIVE container instances seen in the last cycle",
		},
		[]string{"cluster"},
	)

	ServicesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ecs_daemonset_services_total",
			Help: "Number of services listed in the last cycle",
		},
		[]string{"cluster"},
	)

	// Reconciliation metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ecs_daemonset_reconciliation_duration_seconds",
			Help:    "Time taken by one reconciliation cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecs_daemonset_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles by result",
		},
		[]string{"result"},
	)

	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecs_daemonset_decisions_total",
			Help: "Total number of service decisions by action and reason",
		},
		[]string{"action", "reason"},
	)

	ServicesScaled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecs_daemonset_services_scaled_total",
			Help: "Total number of desired count updates issued",
		},
	)

	// ECS API metrics
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecs_daemonset_api_request_duration_seconds",
			Help:    "ECS API call duration in seconds, including SDK retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecs_daemonset_api_errors_total",
			Help: "Total number of failed ECS API calls by operation and error code",
		},
		[]string{"operation", "code"},
	)
)

// Cycle results
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultCanceled = "canceled"
)

func init() {
	prometheus.MustRegister(ActiveNodes)
	prometheus.MustRegister(ServicesTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(ServicesScaled)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(APIErrorsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
