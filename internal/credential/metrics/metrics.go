package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for registry operations.
type Metrics struct {
	CredentialsIssued    prometheus.Counter
	CredentialsDestroyed *prometheus.CounterVec
	OperationsRejected   *prometheus.CounterVec
	LiveCredentials      prometheus.Gauge

	StoreOperationLatency *prometheus.HistogramVec
}

// New registers and returns registry metrics collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CredentialsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "sbt_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		CredentialsDestroyed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbt_credentials_destroyed_total",
			Help: "Total number of credentials destroyed, labeled by how (revoke or burn)",
		}, []string{"via"}),
		OperationsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbt_operations_rejected_total",
			Help: "Total number of rejected registry operations, labeled by operation and error code",
		}, []string{"operation", "code"}),
		LiveCredentials: f.NewGauge(prometheus.GaugeOpts{
			Name: "sbt_live_credentials",
			Help: "Credentials currently held, as last observed by this process",
		}),
		StoreOperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sbt_credential_store_operation_latency_seconds",
			Help:    "Latency of credential store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.CredentialsIssued.Inc()
}

func (m *Metrics) IncrementDestroyed(via string) {
	m.CredentialsDestroyed.WithLabelValues(via).Inc()
}

func (m *Metrics) IncrementRejected(operation, code string) {
	m.OperationsRejected.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) SetLiveCredentials(n int) {
	m.LiveCredentials.Set(float64(n))
}

// ObserveStoreOperationLatency records the latency of a store operation.
func (m *Metrics) ObserveStoreOperationLatency(operation string, durationSeconds float64) {
	m.StoreOperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}
