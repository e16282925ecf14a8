// Package prommetrics exports cellgo metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc := prommetrics.New(reg)
//	cells := cellgo.New(cellgo.WithMetricsCollector(mc))
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/cellgo"
)

const namespace = "cellgo"

// Collector implements cellgo.MetricsCollector with Prometheus instruments.
type Collector struct {
	conversions    *prometheus.CounterVec
	convertSeconds prometheus.Histogram
	allocations    *prometheus.CounterVec
	allocatedBytes prometheus.Counter
	reductions     *prometheus.CounterVec
	reduceSeconds  *prometheus.HistogramVec
	reducedCells   *prometheus.CounterVec
	legacyOps      *prometheus.CounterVec
	legacyValues   *prometheus.CounterVec
}

var _ cellgo.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers it with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Storage width conversions by target width and result.",
		}, []string{"width", "result"}),
		convertSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of storage width conversions.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Explicit allocations by result.",
		}, []string{"result"}),
		allocatedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_bytes_total",
			Help:      "Bytes reserved by successful explicit allocations.",
		}),
		reductions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reductions_total",
			Help:      "Parallel reductions by operation.",
		}, []string{"op"}),
		reduceSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reduction_duration_seconds",
			Help:      "Duration of parallel reductions.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"op"}),
		reducedCells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reduced_cells_total",
			Help:      "Cells scanned by parallel reductions.",
		}, []string{"op"}),
		legacyOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_operations_total",
			Help:      "Legacy format imports and exports by result.",
		}, []string{"op", "result"}),
		legacyValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_values_total",
			Help:      "Values read or written in the legacy format.",
		}, []string{"op"}),
	}
	reg.MustRegister(
		c.conversions, c.convertSeconds,
		c.allocations, c.allocatedBytes,
		c.reductions, c.reduceSeconds, c.reducedCells,
		c.legacyOps, c.legacyValues,
	)
	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordConvert implements cellgo.MetricsCollector.
func (c *Collector) RecordConvert(to cellgo.Width, duration time.Duration, err error) {
	c.conversions.WithLabelValues(to.String(), result(err)).Inc()
	c.convertSeconds.Observe(duration.Seconds())
}

// RecordAllocate implements cellgo.MetricsCollector.
func (c *Collector) RecordAllocate(bytes int64, err error) {
	c.allocations.WithLabelValues(result(err)).Inc()
	if err == nil && bytes > 0 {
		c.allocatedBytes.Add(float64(bytes))
	}
}

// RecordReduce implements cellgo.MetricsCollector.
func (c *Collector) RecordReduce(op string, cells int, duration time.Duration) {
	c.reductions.WithLabelValues(op).Inc()
	c.reduceSeconds.WithLabelValues(op).Observe(duration.Seconds())
	c.reducedCells.WithLabelValues(op).Add(float64(cells))
}

// RecordLegacy implements cellgo.MetricsCollector.
func (c *Collector) RecordLegacy(op string, values int, err error) {
	c.legacyOps.WithLabelValues(op, result(err)).Inc()
	if err == nil {
		c.legacyValues.WithLabelValues(op).Add(float64(values))
	}
}
