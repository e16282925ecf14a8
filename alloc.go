package cellgo

import (
	"context"

	"github.com/hupe1980/cellgo/internal/dispatch"
	"github.com/hupe1980/cellgo/internal/storage"
)

type sizes struct {
	numCells, connectivity int
}

// AllocateExact discards the content and allocates room for numCells cells
// holding connectivitySize point ids in total.
//
// With a memory controller configured the allocation is reserved first; a
// refused reservation returns resource.ErrMemoryLimitExceeded and leaves the
// cell array unchanged.
func (c *CellArray) AllocateExact(numCells, connectivitySize int) error {
	bytes, err := c.allocate(c.Width(), numCells, connectivitySize, "allocate")
	c.opts.metricsCollector.RecordAllocate(bytes, err)
	return err
}

func (c *CellArray) allocate(w Width, numCells, connectivitySize int, op string) (int64, error) {
	ctx := context.Background()
	if numCells < 0 || connectivitySize < 0 {
		c.opts.logger.LogAllocate(ctx, op, 0, ErrNegativeSize)
		return 0, ErrNegativeSize
	}

	bytes := int64(numCells+1+connectivitySize) * int64(w/8)
	if err := c.reserve(bytes); err != nil {
		c.opts.logger.LogAllocate(ctx, op, bytes, err)
		return bytes, err
	}

	s := storage.New(w)
	dispatch.Apply(s.Pair(), allocateExact[int32], allocateExact[int64], sizes{numCells, connectivitySize})
	c.storage = s
	c.structural()

	c.opts.logger.LogAllocate(ctx, op, bytes, nil)
	return bytes, nil
}

func allocateExact[T storage.Index](a *storage.Arrays[T], n sizes) struct{} {
	// Sizes are checked by the caller, so Reserve cannot fail.
	_ = a.Offsets.Reserve(n.numCells + 1)
	_ = a.Connectivity.Reserve(n.connectivity)
	return struct{}{}
}

// AllocateEstimate allocates for numCells cells of up to maxCellSize points each.
func (c *CellArray) AllocateEstimate(numCells, maxCellSize int) error {
	return c.AllocateExact(numCells, numCells*maxCellSize)
}

// AllocateCopy discards the content and allocates room for the content of
// other, switching to other's width.
func (c *CellArray) AllocateCopy(other *CellArray) error {
	if other == nil {
		return ErrNilSource
	}
	bytes, err := c.allocate(other.Width(), other.NumberOfCells(), other.NumberOfConnectivityIDs(), "allocate copy")
	c.opts.metricsCollector.RecordAllocate(bytes, err)
	return err
}

// ResizeExact sets the lengths of both arrays to numCells+1 and
// connectivitySize, keeping existing values and zero-filling new ones.
// The caller is expected to fill in consistent offsets.
func (c *CellArray) ResizeExact(numCells, connectivitySize int) error {
	ctx := context.Background()
	if numCells < 0 || connectivitySize < 0 {
		c.opts.logger.LogAllocate(ctx, "resize", 0, ErrNegativeSize)
		c.opts.metricsCollector.RecordAllocate(0, ErrNegativeSize)
		return ErrNegativeSize
	}

	bytes := int64(numCells+1+connectivitySize) * int64(c.Width()/8)
	if err := c.reserve(bytes); err != nil {
		c.opts.logger.LogAllocate(ctx, "resize", bytes, err)
		c.opts.metricsCollector.RecordAllocate(bytes, err)
		return err
	}

	dispatch.Apply(c.pair(), resizeExact[int32], resizeExact[int64], sizes{numCells, connectivitySize})
	c.structural()

	c.opts.logger.LogAllocate(ctx, "resize", bytes, nil)
	c.opts.metricsCollector.RecordAllocate(bytes, nil)
	return nil
}

func resizeExact[T storage.Index](a *storage.Arrays[T], n sizes) struct{} {
	_ = a.Offsets.Resize(n.numCells + 1)
	_ = a.Connectivity.Resize(n.connectivity)
	return struct{}{}
}

// reserve replaces the current reservation with one of bytes.
// The old reservation is kept when the new one is refused.
func (c *CellArray) reserve(bytes int64) error {
	if err := c.opts.controller.ReserveMemory(bytes); err != nil {
		return err
	}
	c.opts.controller.ReleaseMemory(c.reserved)
	c.reserved = bytes
	return nil
}

func (c *CellArray) dropReservation() {
	c.opts.controller.ReleaseMemory(c.reserved)
	c.reserved = 0
}

// Append appends all cells of src, adding pointOffset to every point id.
//
// The widths of c and src may differ. When c uses 32-bit storage and the
// result does not fit, c is widened to 64 bits first. An empty src is a no-op.
func (c *CellArray) Append(src *CellArray, pointOffset ID) error {
	ctx := context.Background()
	if src == nil {
		c.opts.logger.LogAppend(ctx, 0, pointOffset, ErrNilSource)
		return ErrNilSource
	}
	cells := src.NumberOfCells()
	if cells == 0 {
		return nil
	}

	if !c.store().Is64Bit() {
		lo, hi := src.pointRange()
		c.fit(lo+pointOffset, max(hi+pointOffset, ID(c.NumberOfConnectivityIDs()+src.NumberOfConnectivityIDs())))
	}

	dispatch.Apply2(c.pair(), src.pair(), dispatch.Ops2[ID, struct{}]{
		NN: appendCells[int32, int32],
		NW: appendCells[int32, int64],
		WN: appendCells[int64, int32],
		WW: appendCells[int64, int64],
	}, pointOffset)
	c.structural()

	c.opts.logger.LogAppend(ctx, cells, pointOffset, nil)
	return nil
}

func appendCells[D, S storage.Index](dst *storage.Arrays[D], src *storage.Arrays[S], pointOffset ID) struct{} {
	// Capture src before growing dst: c.Append(c, k) reads the pre-append content.
	srcOffsets := src.Offsets.Values()
	srcConn := src.Connectivity.Values()
	base := ID(dst.Connectivity.Len()) - ID(srcOffsets[0])

	_ = dst.Connectivity.Reserve(dst.Connectivity.Len() + len(srcConn))
	_ = dst.Offsets.Reserve(dst.Offsets.Len() + len(srcOffsets) - 1)

	for _, p := range srcConn {
		dst.Connectivity.Append(D(ID(p) + pointOffset))
	}
	for _, o := range srcOffsets[1:] {
		dst.Offsets.Append(D(base + ID(o)))
	}
	return struct{}{}
}

// pointRange returns the smallest and largest point id, or (0, 0) when empty.
func (c *CellArray) pointRange() (lo, hi ID) {
	r := dispatch.Visit(c.pair(), connectivityRange[int32], connectivityRange[int64])
	return r.lo, r.hi
}

type idBounds struct{ lo, hi ID }

func connectivityRange[T storage.Index](a *storage.Arrays[T]) idBounds {
	lo, hi, _ := a.Connectivity.ValueRange()
	return idBounds{ID(lo), ID(hi)}
}

// DeepCopy replaces the content of c with a copy of src, including src's width.
func (c *CellArray) DeepCopy(src *CellArray) error {
	if src == nil {
		c.opts.logger.LogCopy(context.Background(), "deep copy", ErrNilSource)
		return ErrNilSource
	}
	if src == c {
		return nil
	}
	p := dispatch.Visit(src.pair(), clonePair[int32], clonePair[int64])
	c.dropReservation()
	c.store().Set(p)
	c.structural()
	return nil
}

func clonePair[T storage.Index](a *storage.Arrays[T]) storage.Pair { return a.Clone() }

// ShallowCopy makes c share src's offsets and connectivity arrays.
// Appends through either cell array are visible to both until one of them
// changes width: a 32-bit array widened by an oversized id gets new 64-bit
// arrays and stops sharing.
func (c *CellArray) ShallowCopy(src *CellArray) error {
	if src == nil {
		c.opts.logger.LogCopy(context.Background(), "shallow copy", ErrNilSource)
		return ErrNilSource
	}
	if src == c {
		return nil
	}
	p := dispatch.Visit(src.pair(), sharePair[int32], sharePair[int64])
	c.dropReservation()
	c.store().Set(p)
	c.structural()
	return nil
}

func sharePair[T storage.Index](a *storage.Arrays[T]) storage.Pair {
	return storage.Wrap(a.Offsets, a.Connectivity)
}
