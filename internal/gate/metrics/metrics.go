package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the KYC access gate.
type Metrics struct {
	Increments *prometheus.CounterVec
	Count      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Increments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sbt_kyc_increments_total",
			Help: "KYC increment attempts, labeled by outcome (success, denied)",
		}, []string{"outcome"}),
		Count: f.NewGauge(prometheus.GaugeOpts{
			Name: "sbt_kyc_count",
			Help: "Last KYC counter value written by this process",
		}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	m.Increments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetCount(v uint64) {
	m.Count.Set(float64(v))
}
