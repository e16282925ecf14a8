package cellgo

import (
	"context"
	"slices"

	"github.com/hupe1980/cellgo/dataarray"
	"github.com/hupe1980/cellgo/internal/conv"
	"github.com/hupe1980/cellgo/internal/dispatch"
	"github.com/hupe1980/cellgo/internal/storage"
)

// ID is the canonical point and cell index type.
// Storage whose element type is ID can be read without copying.
type ID = int64

// Width is the element width of the offsets and connectivity arrays.
type Width = storage.Width

const (
	// Width32 stores topology as int32.
	Width32 = storage.Width32
	// Width64 stores topology as int64 (the same type as ID).
	Width64 = storage.Width64
)

// CellArray stores the topology of a set of cells as an offsets array and a
// connectivity array. Cell i uses the point ids
// connectivity[offsets[i]:offsets[i+1]].
//
// A CellArray is not safe for concurrent mutation. Concurrent reads (including
// several Iterators and the parallel reductions) are safe while no goroutine mutates.
type CellArray struct {
	opts    options
	storage *storage.Storage

	// gen counts structural mutations; views and iterators compare against it.
	gen uint64

	// reserved is the number of bytes held from the memory controller.
	reserved int64

	traversalCellID ID
	traversalBuf    []ID
}

// New creates an empty cell array at the configured default width.
func New(optFns ...Option) *CellArray {
	opts := applyOptions(optFns)
	return &CellArray{
		opts:    opts,
		storage: storage.New(opts.defaultWidth),
	}
}

func (c *CellArray) store() *storage.Storage { return c.storage }

func (c *CellArray) pair() storage.Pair { return c.store().Pair() }

// structural marks a mutation that may reallocate or re-layout storage.
func (c *CellArray) structural() { c.gen++ }

// Initialize releases all storage and returns to the empty state at the current width.
func (c *CellArray) Initialize() {
	c.dropReservation()
	c.storage = storage.New(c.Width())
	c.traversalCellID = 0
	c.structural()
}

// Reset returns to the empty state but keeps allocated capacity.
func (c *CellArray) Reset() {
	c.pair().Reset()
	c.traversalCellID = 0
	c.structural()
}

// Squeeze trims both arrays to their length. Logical content is unchanged.
func (c *CellArray) Squeeze() {
	p := c.pair()
	p.Squeeze()
	if size := p.MemorySize(); size < c.reserved {
		c.opts.controller.ReleaseMemory(c.reserved - size)
		c.reserved = size
	}
	c.structural()
}

// NumberOfCells returns the number of cells.
func (c *CellArray) NumberOfCells() int { return c.pair().NumberOfCells() }

// NumberOfOffsets returns the length of the offsets array (NumberOfCells()+1 when valid).
func (c *CellArray) NumberOfOffsets() int { return c.pair().NumberOfOffsets() }

// NumberOfConnectivityIDs returns the length of the connectivity array.
func (c *CellArray) NumberOfConnectivityIDs() int { return c.pair().NumberOfConnectivityIDs() }

// Offset returns offsets[i]. It panics if i is outside [0, NumberOfOffsets()).
func (c *CellArray) Offset(i int) ID {
	return dispatch.Apply(c.pair(), offsetAt[int32], offsetAt[int64], i)
}

func offsetAt[T storage.Index](a *storage.Arrays[T], i int) ID {
	return ID(a.Offsets.At(i))
}

// CellSize returns the number of points in cell id.
// It panics if id is out of range, like slice indexing.
func (c *CellArray) CellSize(id ID) int {
	return dispatch.Apply(c.pair(), dispatch.CellSize[int32], dispatch.CellSize[int64], id)
}

// CellAtID returns the point ids of cell id.
//
// With 64-bit storage the result aliases the live connectivity array: it is
// neither a copy nor stable across structural mutations (use CellView for a
// checked handle). With 32-bit storage the ids are converted into scratch,
// which is grown as needed and returned. It panics if id is out of range.
func (c *CellArray) CellAtID(id ID, scratch []ID) []ID {
	pts, _ := c.cellAt(id, scratch)
	return pts
}

type cellArgs struct {
	id      ID
	scratch []ID
}

type cellResult struct {
	pts    []ID
	copied bool
}

func (c *CellArray) cellAt(id ID, scratch []ID) ([]ID, bool) {
	r := dispatch.Apply(c.pair(), cellAt[int32], cellAt[int64], cellArgs{id: id, scratch: scratch})
	return r.pts, r.copied
}

func cellAt[T storage.Index](a *storage.Arrays[T], arg cellArgs) cellResult {
	r := dispatch.CellRange(a, arg.id)
	if ids, ok := any(r).([]ID); ok {
		return cellResult{pts: ids}
	}
	out := arg.scratch[:0]
	for _, v := range r {
		out = append(out, ID(v))
	}
	return cellResult{pts: out, copied: true}
}

func (c *CellArray) checkID(id ID) error {
	if n := c.NumberOfCells(); id < 0 || id >= ID(n) {
		return &CellIDError{ID: id, NumCells: n}
	}
	return nil
}

// InsertNextCell appends a cell and returns its id.
//
// 32-bit storage is widened to 64 bits first when an id or the resulting
// connectivity length does not fit; values are never truncated.
func (c *CellArray) InsertNextCell(pts ...ID) ID {
	if !c.store().Is64Bit() {
		lo, hi := idRange(pts)
		c.fit(lo, max(hi, ID(c.NumberOfConnectivityIDs()+len(pts))))
	}
	id := dispatch.Apply(c.pair(), insertNextCell[int32], insertNextCell[int64], pts)
	c.structural()
	return id
}

func insertNextCell[T storage.Index](a *storage.Arrays[T], pts []ID) ID {
	for _, p := range pts {
		a.Connectivity.Append(T(p))
	}
	a.Offsets.Append(T(a.Connectivity.Len()))
	return ID(a.Offsets.Len() - 2)
}

// InsertNextCellSize appends a cell of npts points whose ids follow through
// InsertCellPoint. Use UpdateCellCount if the final count differs from npts.
func (c *CellArray) InsertNextCellSize(npts int) ID {
	if !c.store().Is64Bit() {
		c.fit(0, ID(c.NumberOfConnectivityIDs()+npts))
	}
	id := dispatch.Apply(c.pair(), insertNextCellSize[int32], insertNextCellSize[int64], npts)
	c.structural()
	return id
}

func insertNextCellSize[T storage.Index](a *storage.Arrays[T], npts int) ID {
	id := ID(a.Offsets.Len() - 1)
	a.Offsets.Append(T(a.Connectivity.Len() + npts))
	return id
}

// InsertCellPoint appends a point id to the cell started by InsertNextCellSize.
func (c *CellArray) InsertCellPoint(id ID) {
	if !c.store().Is64Bit() {
		c.fit(id, id)
	}
	dispatch.Apply(c.pair(), insertCellPoint[int32], insertCellPoint[int64], id)
	c.structural()
}

func insertCellPoint[T storage.Index](a *storage.Arrays[T], id ID) struct{} {
	a.Connectivity.Append(T(id))
	return struct{}{}
}

// UpdateCellCount sets the point count of the last cell to npts.
// It does nothing on a cell array without cells.
func (c *CellArray) UpdateCellCount(npts int) {
	if c.NumberOfCells() == 0 {
		return
	}
	dispatch.Apply(c.pair(), updateCellCount[int32], updateCellCount[int64], npts)
	c.structural()
}

func updateCellCount[T storage.Index](a *storage.Arrays[T], npts int) struct{} {
	last := a.Offsets.Len() - 1
	a.Offsets.Set(last, a.Offsets.At(last-1)+T(npts))
	return struct{}{}
}

// ReplaceCellAtID overwrites the point ids of cell id.
// The point count cannot change: a different length fails with a *CellSizeError.
func (c *CellArray) ReplaceCellAtID(id ID, pts []ID) error {
	if err := c.checkID(id); err != nil {
		return err
	}
	if size := c.CellSize(id); size != len(pts) {
		return &CellSizeError{ID: id, Expected: size, Actual: len(pts)}
	}
	if !c.store().Is64Bit() {
		lo, hi := idRange(pts)
		c.fit(lo, hi)
	}
	dispatch.Apply(c.pair(), replaceCell[int32], replaceCell[int64], cellArgs{id: id, scratch: pts})
	return nil
}

func replaceCell[T storage.Index](a *storage.Arrays[T], arg cellArgs) struct{} {
	r := dispatch.CellRange(a, arg.id)
	for i, p := range arg.scratch {
		r[i] = T(p)
	}
	return struct{}{}
}

// ReplaceCellPointAtID overwrites the point at position idx of cell id.
func (c *CellArray) ReplaceCellPointAtID(id ID, idx int, pt ID) error {
	if err := c.checkID(id); err != nil {
		return err
	}
	if size := c.CellSize(id); idx < 0 || idx >= size {
		return &PointIndexError{CellID: id, Index: idx, Size: size}
	}
	if !c.store().Is64Bit() {
		c.fit(pt, pt)
	}
	dispatch.Apply(c.pair(), replaceCellPoint[int32], replaceCellPoint[int64], pointArgs{id: id, idx: idx, pt: pt})
	return nil
}

type pointArgs struct {
	id  ID
	idx int
	pt  ID
}

func replaceCellPoint[T storage.Index](a *storage.Arrays[T], arg pointArgs) struct{} {
	dispatch.CellRange(a, arg.id)[arg.idx] = T(arg.pt)
	return struct{}{}
}

// ReverseCellAtID reverses the point order of cell id in place.
func (c *CellArray) ReverseCellAtID(id ID) error {
	if err := c.checkID(id); err != nil {
		return err
	}
	dispatch.Apply(c.pair(), reverseCell[int32], reverseCell[int64], id)
	return nil
}

func reverseCell[T storage.Index](a *storage.Arrays[T], id ID) struct{} {
	slices.Reverse(dispatch.CellRange(a, id))
	return struct{}{}
}

// IsValid checks that offsets start at 0, never decrease, and end at the
// connectivity length, and that both arrays have one component. It is O(N)
// and is never run implicitly: validate arrays adopted through SetData before
// relying on other operations.
func (c *CellArray) IsValid() bool {
	return dispatch.Visit(c.pair(), isValid[int32], isValid[int64])
}

func isValid[T storage.Index](a *storage.Arrays[T]) bool {
	if a.Offsets.NumberOfComponents() != 1 || a.Connectivity.NumberOfComponents() != 1 {
		return false
	}
	off := a.Offsets.Values()
	if len(off) == 0 || off[0] != 0 {
		return false
	}
	for i := 1; i < len(off); i++ {
		if off[i] < off[i-1] {
			return false
		}
	}
	return int64(off[len(off)-1]) == int64(a.Connectivity.Len())
}

// IsHomogeneous returns the common cell size k > 0 when every cell has k
// points, 0 for an empty array and -1 otherwise. An array whose cells are all
// empty is not considered homogeneous.
func (c *CellArray) IsHomogeneous() ID {
	return dispatch.Visit(c.pair(), isHomogeneous[int32], isHomogeneous[int64])
}

func isHomogeneous[T storage.Index](a *storage.Arrays[T]) ID {
	off := a.Offsets.Values()
	if len(off) < 2 {
		return 0
	}
	size := off[1] - off[0]
	if size <= 0 {
		return -1
	}
	for i := 1; i < len(off)-1; i++ {
		if off[i+1]-off[i] != size {
			return -1
		}
	}
	return ID(size)
}

// ActualMemorySize returns the allocated size of both arrays in bytes.
func (c *CellArray) ActualMemorySize() int64 { return c.pair().MemorySize() }

// OffsetsArray returns the live offsets array. No copy is made.
func (c *CellArray) OffsetsArray() dataarray.DataArray { return c.pair().OffsetsData() }

// ConnectivityArray returns the live connectivity array. No copy is made.
func (c *CellArray) ConnectivityArray() dataarray.DataArray { return c.pair().ConnectivityData() }

// OffsetsArray32 returns the live offsets array, or nil if storage is 64-bit.
func (c *CellArray) OffsetsArray32() *dataarray.Array[int32] {
	if a := c.store().Narrow(); a != nil {
		return a.Offsets
	}
	return nil
}

// ConnectivityArray32 returns the live connectivity array, or nil if storage is 64-bit.
func (c *CellArray) ConnectivityArray32() *dataarray.Array[int32] {
	if a := c.store().Narrow(); a != nil {
		return a.Connectivity
	}
	return nil
}

// OffsetsArray64 returns the live offsets array, or nil if storage is 32-bit.
func (c *CellArray) OffsetsArray64() *dataarray.Array[int64] {
	if a := c.store().Wide(); a != nil {
		return a.Offsets
	}
	return nil
}

// ConnectivityArray64 returns the live connectivity array, or nil if storage is 32-bit.
func (c *CellArray) ConnectivityArray64() *dataarray.Array[int64] {
	if a := c.store().Wide(); a != nil {
		return a.Connectivity
	}
	return nil
}

// SetData adopts offsets and connectivity as the backing arrays without copying.
//
// Both arrays must have a single component and the same element type, int32
// or int64; the storage width follows the element type. On error the cell
// array is unchanged. The arrays are not validated: call IsValid if they come
// from an untrusted source.
func (c *CellArray) SetData(offsets, connectivity dataarray.DataArray) error {
	err := c.setData(offsets, connectivity)
	c.opts.logger.LogSetData(context.Background(), typeName(offsets), typeName(connectivity), err)
	return err
}

func (c *CellArray) setData(offsets, connectivity dataarray.DataArray) error {
	if offsets == nil || connectivity == nil {
		return ErrUnsupportedArrayType
	}
	if offsets.NumberOfComponents() != 1 || connectivity.NumberOfComponents() != 1 {
		return ErrComponentCount
	}
	if offsets.DataType() != connectivity.DataType() {
		return ErrArrayTypeMismatch
	}

	var p storage.Pair
	switch o := offsets.(type) {
	case *dataarray.Array[int32]:
		cn, ok := connectivity.(*dataarray.Array[int32])
		if !ok {
			return ErrUnsupportedArrayType
		}
		p = storage.Wrap(o, cn)
	case *dataarray.Array[int64]:
		cn, ok := connectivity.(*dataarray.Array[int64])
		if !ok {
			return ErrUnsupportedArrayType
		}
		p = storage.Wrap(o, cn)
	default:
		return ErrUnsupportedArrayType
	}

	c.dropReservation()
	c.store().Set(p)
	c.structural()
	return nil
}

func typeName(a dataarray.DataArray) string {
	if a == nil {
		return "nil"
	}
	return a.DataType().String()
}

// idRange returns the smallest and largest id, or (0, 0) for no ids.
func idRange(pts []ID) (lo, hi ID) {
	if len(pts) == 0 {
		return 0, 0
	}
	return slices.Min(pts), slices.Max(pts)
}

// fit widens 32-bit storage when [lo, hi] is not representable in 32 bits.
func (c *CellArray) fit(lo, hi ID) {
	if c.store().Is64Bit() || (conv.FitsInt32(lo) && conv.FitsInt32(hi)) {
		return
	}
	cells := c.NumberOfCells()
	c.storage.ConvertToWide()
	c.structural()
	c.opts.logger.WarnContext(context.Background(), "widened storage to fit point ids",
		"cells", cells,
		"min", lo,
		"max", hi,
	)
}
