package cellgo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/cellgo/internal/dispatch"
	"github.com/hupe1980/cellgo/internal/smp"
	"github.com/hupe1980/cellgo/internal/storage"
)

// The analyses below partition the cells, reduce each partition on its own
// goroutine into a private accumulator and fold the accumulators in partition
// order. Arrays below the configured grain are scanned on the caller.

type reduceArgs struct {
	ctx    context.Context
	cfg    smp.Config
	coords []float64
}

type outcome[V any] struct {
	value V
	err   error
}

func (c *CellArray) reduction(ctx context.Context) reduceArgs {
	return reduceArgs{ctx: ctx, cfg: c.opts.parallel}
}

func (c *CellArray) recordReduce(op string, start time.Time) {
	c.opts.metricsCollector.RecordReduce(op, c.NumberOfCells(), time.Since(start))
}

// MaxCellSize returns the largest number of points in any cell, or 0 for an empty array.
func (c *CellArray) MaxCellSize() int {
	n, _ := c.MaxCellSizeContext(context.Background())
	return n
}

// MaxCellSizeContext is MaxCellSize with cancellation.
func (c *CellArray) MaxCellSizeContext(ctx context.Context) (int, error) {
	defer c.recordReduce("max_cell_size", time.Now())
	r := dispatch.Apply(c.pair(), maxCellSize[int32], maxCellSize[int64], c.reduction(ctx))
	return r.value, r.err
}

func maxCellSize[T storage.Index](a *storage.Arrays[T], arg reduceArgs) outcome[int] {
	off := a.Offsets.Values()
	v, err := smp.Reduce(arg.ctx, a.NumberOfCells(), arg.cfg,
		func() int { return 0 },
		func(acc, begin, end int) int {
			for i := begin; i < end; i++ {
				acc = max(acc, int(off[i+1]-off[i]))
			}
			return acc
		},
		func(x, y int) int { return max(x, y) },
	)
	return outcome[int]{v, err}
}

// DistinctCellSizes returns the distinct cell sizes in increasing order.
func (c *CellArray) DistinctCellSizes() []int {
	sizes, _ := c.DistinctCellSizesContext(context.Background())
	return sizes
}

// DistinctCellSizesContext is DistinctCellSizes with cancellation.
func (c *CellArray) DistinctCellSizesContext(ctx context.Context) ([]int, error) {
	defer c.recordReduce("distinct_cell_sizes", time.Now())
	r := dispatch.Apply(c.pair(), cellSizeSet[int32], cellSizeSet[int64], c.reduction(ctx))
	if r.err != nil {
		return nil, r.err
	}
	sizes := make([]int, 0, r.value.GetCardinality())
	it := r.value.Iterator()
	for it.HasNext() {
		sizes = append(sizes, int(it.Next()))
	}
	return sizes, nil
}

func cellSizeSet[T storage.Index](a *storage.Arrays[T], arg reduceArgs) outcome[*roaring.Bitmap] {
	off := a.Offsets.Values()
	v, err := smp.Reduce(arg.ctx, a.NumberOfCells(), arg.cfg,
		roaring.New,
		func(acc *roaring.Bitmap, begin, end int) *roaring.Bitmap {
			for i := begin; i < end; i++ {
				acc.Add(uint32(off[i+1] - off[i]))
			}
			return acc
		},
		func(x, y *roaring.Bitmap) *roaring.Bitmap {
			x.Or(y)
			return x
		},
	)
	return outcome[*roaring.Bitmap]{v, err}
}

// UsedPoints returns the set of point ids referenced by any cell.
// Negative ids are not representable and are skipped.
func (c *CellArray) UsedPoints() *roaring64.Bitmap {
	bm, _ := c.UsedPointsContext(context.Background())
	return bm
}

// UsedPointsContext is UsedPoints with cancellation.
func (c *CellArray) UsedPointsContext(ctx context.Context) (*roaring64.Bitmap, error) {
	defer c.recordReduce("used_points", time.Now())
	r := dispatch.Apply(c.pair(), usedPoints[int32], usedPoints[int64], c.reduction(ctx))
	return r.value, r.err
}

func usedPoints[T storage.Index](a *storage.Arrays[T], arg reduceArgs) outcome[*roaring64.Bitmap] {
	off := a.Offsets.Values()
	conn := a.Connectivity.Values()
	v, err := smp.Reduce(arg.ctx, a.NumberOfCells(), arg.cfg,
		roaring64.New,
		func(acc *roaring64.Bitmap, begin, end int) *roaring64.Bitmap {
			for _, p := range conn[off[begin]:off[end]] {
				if p >= 0 {
					acc.Add(uint64(p))
				}
			}
			return acc
		},
		func(x, y *roaring64.Bitmap) *roaring64.Bitmap {
			x.Or(y)
			return x
		},
	)
	return outcome[*roaring64.Bitmap]{v, err}
}

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max [3]float64
	valid    bool
}

// IsEmpty reports whether no point contributed to the box.
func (b Bounds) IsEmpty() bool { return !b.valid }

func emptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Min: [3]float64{inf, inf, inf}, Max: [3]float64{-inf, -inf, -inf}}
}

func (b *Bounds) add(x, y, z float64) {
	b.Min = [3]float64{min(b.Min[0], x), min(b.Min[1], y), min(b.Min[2], z)}
	b.Max = [3]float64{max(b.Max[0], x), max(b.Max[1], y), max(b.Max[2], z)}
	b.valid = true
}

func (b Bounds) union(o Bounds) Bounds {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	b.add(o.Min[0], o.Min[1], o.Min[2])
	b.add(o.Max[0], o.Max[1], o.Max[2])
	return b
}

// Bounds returns the bounding box of the points referenced by any cell.
// coords holds x, y, z per point. A point id outside coords returns an
// error wrapping ErrPointIDOutOfRange.
func (c *CellArray) Bounds(coords []float64) (Bounds, error) {
	return c.BoundsContext(context.Background(), coords)
}

// BoundsContext is Bounds with cancellation.
func (c *CellArray) BoundsContext(ctx context.Context, coords []float64) (Bounds, error) {
	defer c.recordReduce("bounds", time.Now())
	arg := c.reduction(ctx)
	arg.coords = coords
	r := dispatch.Apply(c.pair(), cellBounds[int32], cellBounds[int64], arg)
	if r.err != nil {
		return Bounds{}, r.err
	}
	if r.value.err != nil {
		return Bounds{}, r.value.err
	}
	if r.value.value.IsEmpty() {
		return Bounds{}, nil
	}
	return r.value.value, nil
}

func cellBounds[T storage.Index](a *storage.Arrays[T], arg reduceArgs) outcome[outcome[Bounds]] {
	off := a.Offsets.Values()
	conn := a.Connectivity.Values()
	numPoints := ID(len(arg.coords) / 3)
	v, err := smp.Reduce(arg.ctx, a.NumberOfCells(), arg.cfg,
		func() outcome[Bounds] { return outcome[Bounds]{value: emptyBounds()} },
		func(acc outcome[Bounds], begin, end int) outcome[Bounds] {
			for _, p := range conn[off[begin]:off[end]] {
				if ID(p) < 0 || ID(p) >= numPoints {
					acc.err = fmt.Errorf("%w: %d not in [0, %d)", ErrPointIDOutOfRange, p, numPoints)
					return acc
				}
				x := arg.coords[3*int(p):]
				acc.value.add(x[0], x[1], x[2])
			}
			return acc
		},
		func(x, y outcome[Bounds]) outcome[Bounds] {
			if x.err != nil {
				return x
			}
			if y.err != nil {
				return y
			}
			return outcome[Bounds]{value: x.value.union(y.value)}
		},
	)
	return outcome[outcome[Bounds]]{v, err}
}
