package cellgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prommetrics package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordConvert is called after each width conversion attempt.
	RecordConvert(to Width, duration time.Duration, err error)

	// RecordAllocate is called after each explicit allocation
	// (AllocateExact, AllocateEstimate, AllocateCopy, ResizeExact).
	RecordAllocate(bytes int64, err error)

	// RecordReduce is called after each parallel reduction.
	// op names the reduction, cells is the number of cells scanned.
	RecordReduce(op string, cells int, duration time.Duration)

	// RecordLegacy is called after each legacy import or export.
	// values is the length of the legacy stream.
	RecordLegacy(op string, values int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConvert(Width, time.Duration, error) {}
func (NoopMetricsCollector) RecordAllocate(int64, error)               {}
func (NoopMetricsCollector) RecordReduce(string, int, time.Duration)   {}
func (NoopMetricsCollector) RecordLegacy(string, int, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ConvertCount      atomic.Int64
	ConvertErrors     atomic.Int64
	ConvertTotalNanos atomic.Int64
	AllocateCount     atomic.Int64
	AllocateErrors    atomic.Int64
	AllocatedBytes    atomic.Int64
	ReduceCount       atomic.Int64
	ReduceCells       atomic.Int64
	ReduceTotalNanos  atomic.Int64
	LegacyCount       atomic.Int64
	LegacyErrors      atomic.Int64
	LegacyValues      atomic.Int64
}

// RecordConvert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConvert(_ Width, duration time.Duration, err error) {
	b.ConvertCount.Add(1)
	b.ConvertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ConvertErrors.Add(1)
	}
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(bytes int64, err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
		return
	}
	b.AllocatedBytes.Add(bytes)
}

// RecordReduce implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReduce(_ string, cells int, duration time.Duration) {
	b.ReduceCount.Add(1)
	b.ReduceCells.Add(int64(cells))
	b.ReduceTotalNanos.Add(duration.Nanoseconds())
}

// RecordLegacy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLegacy(_ string, values int, err error) {
	b.LegacyCount.Add(1)
	b.LegacyValues.Add(int64(values))
	if err != nil {
		b.LegacyErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ConvertCount:    b.ConvertCount.Load(),
		ConvertErrors:   b.ConvertErrors.Load(),
		ConvertAvgNanos: avg(b.ConvertTotalNanos.Load(), b.ConvertCount.Load()),
		AllocateCount:   b.AllocateCount.Load(),
		AllocateErrors:  b.AllocateErrors.Load(),
		AllocatedBytes:  b.AllocatedBytes.Load(),
		ReduceCount:     b.ReduceCount.Load(),
		ReduceCells:     b.ReduceCells.Load(),
		ReduceAvgNanos:  avg(b.ReduceTotalNanos.Load(), b.ReduceCount.Load()),
		LegacyCount:     b.LegacyCount.Load(),
		LegacyErrors:    b.LegacyErrors.Load(),
		LegacyValues:    b.LegacyValues.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConvertCount    int64
	ConvertErrors   int64
	ConvertAvgNanos int64
	AllocateCount   int64
	AllocateErrors  int64
	AllocatedBytes  int64
	ReduceCount     int64
	ReduceCells     int64
	ReduceAvgNanos  int64
	LegacyCount     int64
	LegacyErrors    int64
	LegacyValues    int64
}
