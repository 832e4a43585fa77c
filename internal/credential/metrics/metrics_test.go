package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecordOnOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementIssued()
	m.IncrementIssued()
	m.IncrementDestroyed("burn")
	m.IncrementRejected("transfer", "locked")
	m.SetLiveCredentials(1)
	m.ObserveStoreOperationLatency("insert", 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CredentialsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CredentialsDestroyed.WithLabelValues("burn")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsRejected.WithLabelValues("transfer", "locked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveCredentials))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StoreOperationLatency))
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
