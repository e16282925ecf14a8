package storage

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/cellgo/dataarray"
	"github.com/hupe1980/cellgo/internal/conv"
)

// ErrLossyConversion is returned when a value does not fit the narrower width.
var ErrLossyConversion = errors.New("storage: values do not fit 32-bit storage")

// Index is the set of element types a Pair can be instantiated with.
type Index interface {
	int32 | int64
}

// Width is the element width of the active arrays.
type Width uint8

const (
	// Width32 stores offsets and connectivity as int32.
	Width32 Width = 32
	// Width64 stores offsets and connectivity as int64.
	Width64 Width = 64
)

func (w Width) String() string {
	switch w {
	case Width32:
		return "32-bit"
	case Width64:
		return "64-bit"
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

// Valid reports whether w is one of the two supported widths.
func (w Width) Valid() bool { return w == Width32 || w == Width64 }

// Pair is the width-erased view of an Arrays value.
// It is sealed: *Arrays[int32] and *Arrays[int64] are the only implementations.
type Pair interface {
	Width() Width
	NumberOfCells() int
	NumberOfOffsets() int
	NumberOfConnectivityIDs() int
	// Reset empties both arrays but keeps their capacity.
	Reset()
	// Squeeze trims both arrays to their length.
	Squeeze()
	// MemorySize is the allocated size of both arrays in bytes.
	MemorySize() int64
	OffsetsData() dataarray.DataArray
	ConnectivityData() dataarray.DataArray
	sealed()
}

// Arrays is one offsets/connectivity pair at element type T.
type Arrays[T Index] struct {
	Offsets      *dataarray.Array[T]
	Connectivity *dataarray.Array[T]
}

// NewArrays returns arrays in the empty state: offsets [0], connectivity [].
func NewArrays[T Index]() *Arrays[T] {
	a := &Arrays[T]{
		Offsets:      dataarray.New[T](1),
		Connectivity: dataarray.New[T](1),
	}
	a.Offsets.Append(0)
	return a
}

// Wrap adopts existing arrays without copying.
func Wrap[T Index](offsets, connectivity *dataarray.Array[T]) *Arrays[T] {
	return &Arrays[T]{Offsets: offsets, Connectivity: connectivity}
}

func (a *Arrays[T]) sealed() {}

// Width implements Pair.
func (a *Arrays[T]) Width() Width {
	var zero T
	if unsafe.Sizeof(zero) == 4 {
		return Width32
	}
	return Width64
}

// NumberOfCells implements Pair.
func (a *Arrays[T]) NumberOfCells() int {
	if n := a.Offsets.Len(); n > 0 {
		return n - 1
	}
	return 0
}

// NumberOfOffsets implements Pair.
func (a *Arrays[T]) NumberOfOffsets() int { return a.Offsets.Len() }

// NumberOfConnectivityIDs implements Pair.
func (a *Arrays[T]) NumberOfConnectivityIDs() int { return a.Connectivity.Len() }

// Reset implements Pair.
func (a *Arrays[T]) Reset() {
	a.Offsets.Reset()
	a.Offsets.Append(0)
	a.Connectivity.Reset()
}

// Squeeze implements Pair.
func (a *Arrays[T]) Squeeze() {
	a.Offsets.Squeeze()
	a.Connectivity.Squeeze()
}

// MemorySize implements Pair.
func (a *Arrays[T]) MemorySize() int64 {
	return a.Offsets.MemorySize() + a.Connectivity.MemorySize()
}

// OffsetsData implements Pair.
func (a *Arrays[T]) OffsetsData() dataarray.DataArray { return a.Offsets }

// ConnectivityData implements Pair.
func (a *Arrays[T]) ConnectivityData() dataarray.DataArray { return a.Connectivity }

// Clone deep-copies both arrays.
func (a *Arrays[T]) Clone() *Arrays[T] {
	return &Arrays[T]{Offsets: a.Offsets.Clone(), Connectivity: a.Connectivity.Clone()}
}

// Storage owns exactly one active Pair.
// The zero value is not usable; construct with New.
type Storage struct {
	active Pair
}

// New returns empty storage at width w. An unsupported width is a programming error.
func New(w Width) *Storage {
	s := &Storage{}
	s.active = newPair(w)
	return s
}

func newPair(w Width) Pair {
	switch w {
	case Width32:
		return NewArrays[int32]()
	case Width64:
		return NewArrays[int64]()
	default:
		panic(fmt.Sprintf("storage: unsupported width %d", w))
	}
}

// Width reports the active width.
func (s *Storage) Width() Width { return s.active.Width() }

// Is64Bit reports whether the wide arrays are active.
func (s *Storage) Is64Bit() bool { return s.active.Width() == Width64 }

// Pair returns the active pair.
func (s *Storage) Pair() Pair { return s.active }

// Narrow returns the active int32 arrays, or nil when the wide arrays are active.
func (s *Storage) Narrow() *Arrays[int32] {
	a, _ := s.active.(*Arrays[int32])
	return a
}

// Wide returns the active int64 arrays, or nil when the narrow arrays are active.
func (s *Storage) Wide() *Arrays[int64] {
	a, _ := s.active.(*Arrays[int64])
	return a
}

// Set replaces the active pair.
func (s *Storage) Set(p Pair) {
	if p == nil {
		panic("storage: nil pair")
	}
	s.active = p
}

// Use switches to empty arrays of width w. It is a no-op if w is already active.
// Switching width discards the current content.
func (s *Storage) Use(w Width) {
	if s.active.Width() == w {
		return
	}
	s.active = newPair(w)
}

// CanConvertToNarrow reports whether every value fits int32.
func (s *Storage) CanConvertToNarrow() bool {
	wide := s.Wide()
	if wide == nil {
		return true
	}
	return fitsNarrow(wide)
}

func fitsNarrow(a *Arrays[int64]) bool {
	if lo, hi, ok := a.Offsets.ValueRange(); ok && (!conv.FitsInt32(lo) || !conv.FitsInt32(hi)) {
		return false
	}
	if lo, hi, ok := a.Connectivity.ValueRange(); ok && (!conv.FitsInt32(lo) || !conv.FitsInt32(hi)) {
		return false
	}
	return true
}

// ConvertToNarrow copies the content into int32 arrays.
// On ErrLossyConversion the storage is left unchanged.
func (s *Storage) ConvertToNarrow() error {
	wide := s.Wide()
	if wide == nil {
		return nil
	}
	if !fitsNarrow(wide) {
		return ErrLossyConversion
	}
	s.active = &Arrays[int32]{
		Offsets:      convertArray[int32](wide.Offsets),
		Connectivity: convertArray[int32](wide.Connectivity),
	}
	return nil
}

// ConvertToWide copies the content into int64 arrays. It cannot fail.
func (s *Storage) ConvertToWide() {
	narrow := s.Narrow()
	if narrow == nil {
		return
	}
	s.active = &Arrays[int64]{
		Offsets:      convertArray[int64](narrow.Offsets),
		Connectivity: convertArray[int64](narrow.Connectivity),
	}
}

// convertArray copies src into a new array of element type D.
// Callers check the value range before narrowing.
func convertArray[D, S Index](src *dataarray.Array[S]) *dataarray.Array[D] {
	values := src.Values()
	out := make([]D, len(values))
	for i, v := range values {
		out[i] = D(v)
	}
	dst := dataarray.FromSlice(out)
	dst.SetName(src.Name())
	return dst
}
