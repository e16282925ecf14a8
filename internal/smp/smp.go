package smp

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultGrain is the range size below which loops run on the calling goroutine.
const DefaultGrain = 16384

// Config controls partitioning.
type Config struct {
	// Workers bounds the number of concurrent partitions. 0 means GOMAXPROCS.
	Workers int
	// Grain is the minimum partition size. 0 means DefaultGrain.
	Grain int
}

func (c Config) normalize() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Grain <= 0 {
		c.Grain = DefaultGrain
	}
	return c
}

// Range is a half-open index range [Begin, End).
type Range struct {
	Begin, End int
}

// Partition splits [0, n) into contiguous ranges no smaller than the grain.
// Ranges are returned in increasing order.
func Partition(n int, cfg Config) []Range {
	if n <= 0 {
		return nil
	}
	cfg = cfg.normalize()
	if n <= cfg.Grain || cfg.Workers == 1 {
		return []Range{{0, n}}
	}

	// Over-partition a little so uneven cells still balance across workers.
	parts := cfg.Workers * 4
	size := (n + parts - 1) / parts
	if size < cfg.Grain {
		size = cfg.Grain
	}

	ranges := make([]Range, 0, (n+size-1)/size)
	for begin := 0; begin < n; begin += size {
		ranges = append(ranges, Range{begin, min(begin+size, n)})
	}
	return ranges
}

// For runs body over [0, n) split into partitions.
// A single partition runs on the calling goroutine.
// The first error cancels the context passed to remaining partitions.
func For(ctx context.Context, n int, cfg Config, body func(ctx context.Context, begin, end int) error) error {
	ranges := Partition(n, cfg)
	if len(ranges) == 0 {
		return nil
	}
	if len(ranges) == 1 {
		return body(ctx, ranges[0].Begin, ranges[0].End)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.normalize().Workers)
	for _, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return body(gctx, r.Begin, r.End)
		})
	}
	return g.Wait()
}

// Reduce runs a partitioned reduction over [0, n).
//
// Each partition gets its own accumulator from init and fills it with body.
// After all partitions finish, the accumulators are folded with combine on the
// calling goroutine, in partition order. For n == 0 it returns init().
func Reduce[T any](
	ctx context.Context,
	n int,
	cfg Config,
	init func() T,
	body func(acc T, begin, end int) T,
	combine func(a, b T) T,
) (T, error) {
	ranges := Partition(n, cfg)
	if len(ranges) == 0 {
		return init(), nil
	}

	locals := make([]T, len(ranges))
	if len(ranges) == 1 {
		locals[0] = body(init(), ranges[0].Begin, ranges[0].End)
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.normalize().Workers)
		for i, r := range ranges {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				locals[i] = body(init(), r.Begin, r.End)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			var zero T
			return zero, err
		}
	}

	result := locals[0]
	for _, l := range locals[1:] {
		result = combine(result, l)
	}
	return result, nil
}
