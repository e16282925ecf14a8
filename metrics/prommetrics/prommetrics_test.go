package prommetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cellgo"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := New(reg)

	ca := cellgo.New(cellgo.WithMetricsCollector(mc), cellgo.WithDefaultWidth(cellgo.Width64))
	require.NoError(t, ca.ImportLegacyFormat([]cellgo.ID{3, 0, 1, 2, 2, 2, 3}))
	_ = ca.ExportLegacyFormat()
	require.Error(t, ca.ImportLegacyFormat([]cellgo.ID{5, 1}))
	require.NoError(t, ca.ConvertTo32BitStorage())
	require.NoError(t, ca.AllocateExact(10, 40))
	_ = ca.MaxCellSize()

	assert.Equal(t, 1.0, testutil.ToFloat64(mc.conversions.WithLabelValues("32-bit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.legacyOps.WithLabelValues("import", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.legacyOps.WithLabelValues("import", "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(mc.legacyValues.WithLabelValues("export")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.allocations.WithLabelValues("ok")))
	assert.Equal(t, float64((11+40)*4), testutil.ToFloat64(mc.allocatedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.reductions.WithLabelValues("max_cell_size")))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
