package cellgo

import (
	"log/slog"

	"github.com/hupe1980/cellgo/internal/smp"
	"github.com/hupe1980/cellgo/resource"
)

type options struct {
	defaultWidth     Width
	logger           *Logger
	metricsCollector MetricsCollector
	parallel         smp.Config
	controller       *resource.Controller
}

// Option configures a CellArray.
type Option func(*options)

// WithDefaultWidth sets the width used for new storage and by UseDefaultStorage
// and ConvertToDefaultStorage. Invalid widths are ignored.
//
// The default is Width64.
func WithDefaultWidth(w Width) Option {
	return func(o *options) {
		if w.Valid() {
			o.defaultWidth = w
		}
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := cellgo.NewJSONLogger(slog.LevelInfo)
//	cells := cellgo.New(cellgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithParallelism configures the parallel reductions (MaxCellSize, UsedPoints, ...).
// workers bounds concurrent partitions (0 = GOMAXPROCS); grain is the cell count
// below which a reduction runs serially (0 = default).
func WithParallelism(workers, grain int) Option {
	return func(o *options) {
		o.parallel = smp.Config{Workers: workers, Grain: grain}
	}
}

// WithMemoryController makes explicit allocations reserve memory from c.
// A refused reservation fails the allocation with resource.ErrMemoryLimitExceeded.
func WithMemoryController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		defaultWidth:     Width64,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
