package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWith_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	m.Batches.WithLabelValues("success").Inc()
	m.DateFallbacks.Add(2)

	n, err := testutil.GatherAndCount(reg, "nespreso_batches_total", "nespreso_date_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Panics(t, func() { NewMetricsWith(reg) }, "second registration should collide")
}

func TestNewMetricsWith_NilRegistry(t *testing.T) {
	m := NewMetricsWith(nil)
	m.RunsInProgress.Inc()
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsInProgress), 0)
}
