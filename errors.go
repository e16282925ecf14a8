package cellgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cellgo/internal/storage"
)

var (
	// ErrLossyConversion is returned when content does not fit 32-bit storage.
	ErrLossyConversion = storage.ErrLossyConversion

	// ErrCellSizeMismatch is returned when a replacement cell has a different point count.
	ErrCellSizeMismatch = errors.New("replacement cell size differs from current cell size")

	// ErrCellIDOutOfRange is returned when a cell id is outside [0, NumberOfCells()).
	ErrCellIDOutOfRange = errors.New("cell id out of range")

	// ErrComponentCount is returned by SetData when an array has more than one component.
	ErrComponentCount = errors.New("arrays must have a single component")

	// ErrArrayTypeMismatch is returned by SetData when offsets and connectivity differ in element type.
	ErrArrayTypeMismatch = errors.New("offsets and connectivity must share an element type")

	// ErrUnsupportedArrayType is returned by SetData for element types other than
	// int32 and int64, and for DataArray implementations other than *dataarray.Array.
	ErrUnsupportedArrayType = errors.New("unsupported array element type")

	// ErrMalformedLegacy is returned when a legacy [n, ids...] stream is truncated or has a negative count.
	ErrMalformedLegacy = errors.New("malformed legacy cell data")

	// ErrNilSource is returned when a copy or append source is nil.
	ErrNilSource = errors.New("source cell array is nil")

	// ErrStaleView is returned when a CellView outlives a structural mutation of its array.
	ErrStaleView = errors.New("cell view invalidated by mutation")

	// ErrStaleIterator is reported by Iterator.Err after a structural mutation ended the traversal.
	ErrStaleIterator = errors.New("iterator invalidated by mutation")

	// ErrNegativeSize is returned when an allocation request is negative.
	ErrNegativeSize = errors.New("negative allocation size")

	// ErrPointIndexOutOfRange is returned when a position inside a cell is outside [0, CellSize).
	ErrPointIndexOutOfRange = errors.New("point index out of range")

	// ErrInvalidLocation is returned when a legacy location is not the start of a cell.
	ErrInvalidLocation = errors.New("legacy location is not the start of a cell")

	// ErrPointIDOutOfRange is returned when a cell references a point outside the coordinate array.
	ErrPointIDOutOfRange = errors.New("point id out of range")
)

// CellIDError reports an out-of-range cell id.
//
// errors.Is(err, ErrCellIDOutOfRange) holds for every CellIDError.
type CellIDError struct {
	ID       ID
	NumCells int
}

func (e *CellIDError) Error() string {
	return fmt.Sprintf("cell id %d out of range [0, %d)", e.ID, e.NumCells)
}

func (e *CellIDError) Unwrap() error { return ErrCellIDOutOfRange }

// CellSizeError reports a replacement whose size differs from the existing cell.
//
// errors.Is(err, ErrCellSizeMismatch) holds for every CellSizeError.
type CellSizeError struct {
	ID       ID
	Expected int
	Actual   int
}

func (e *CellSizeError) Error() string {
	return fmt.Sprintf("cell %d: size mismatch: expected %d, got %d", e.ID, e.Expected, e.Actual)
}

func (e *CellSizeError) Unwrap() error { return ErrCellSizeMismatch }

// PointIndexError reports an out-of-range position inside a cell.
//
// errors.Is(err, ErrPointIndexOutOfRange) holds for every PointIndexError.
type PointIndexError struct {
	CellID ID
	Index  int
	Size   int
}

func (e *PointIndexError) Error() string {
	return fmt.Sprintf("cell %d: point index %d out of range [0, %d)", e.CellID, e.Index, e.Size)
}

func (e *PointIndexError) Unwrap() error { return ErrPointIndexOutOfRange }

// ConversionError reports a failed width conversion.
//
// The original underlying error can be accessed via errors.Unwrap.
type ConversionError struct {
	From, To Width
	cause    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s to %s storage: %v", e.From, e.To, e.cause)
}

func (e *ConversionError) Unwrap() error { return e.cause }
