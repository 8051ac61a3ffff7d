package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew_GaugesStartAtZero(t *testing.T) {
	r := New()
	require.Equal(t, 0.0, testutil.ToFloat64(r.WatermarkScaleFactor))
	require.Equal(t, 0.0, testutil.ToFloat64(r.LeakGrowthCount))
}

func TestRegistry_SetWatermarkScaleFactor(t *testing.T) {
	r := New()
	r.WatermarkScaleFactor.Set(120)
	require.Equal(t, 120.0, testutil.ToFloat64(r.WatermarkScaleFactor))
}

func TestRegistry_CompactionTriggersByNode(t *testing.T) {
	r := New()
	r.CompactionTriggers.WithLabelValues("0").Inc()
	r.CompactionTriggers.WithLabelValues("0").Inc()
	r.CompactionTriggers.WithLabelValues("1").Inc()
	require.Equal(t, 2.0, testutil.ToFloat64(r.CompactionTriggers.WithLabelValues("0")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.CompactionTriggers.WithLabelValues("1")))
}
