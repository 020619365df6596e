package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	require.NoError(t, m.Track("catalog:warmup").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("catalog:warmup").End(boom), boom)
	m.AddProcessed("catalog:warmup", 12)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("catalog:warmup", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("catalog:warmup")))
	require.Equal(t, 12.0, testutil.ToFloat64(m.processed.WithLabelValues("catalog:warmup")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	require.NoError(t, m.Track("x").End(nil))
	m.AddProcessed("x", 3)
}
