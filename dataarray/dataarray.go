package dataarray

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrNegativeSize is returned when a capacity or length request is negative.
var ErrNegativeSize = errors.New("dataarray: negative size")

// DataType identifies the concrete element type of an array.
type DataType uint8

const (
	Unknown DataType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

func (t DataType) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
}

// Number is the set of element types an Array can hold.
type Number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// DataArray is the type-erased view of an Array.
// It is what boundary APIs accept when the element type is decided by the caller.
type DataArray interface {
	// DataType reports the concrete element type.
	DataType() DataType
	// NumberOfComponents is the number of values per tuple.
	NumberOfComponents() int
	// NumberOfTuples is Len() / NumberOfComponents().
	NumberOfTuples() int
	// NumberOfValues is the total number of stored values.
	NumberOfValues() int
	// MemorySize returns the allocated size in bytes.
	MemorySize() int64
}

// Array is a contiguous, tuple-organized array of numbers.
//
// The zero value is not usable; construct with New or FromSlice.
// An Array is not safe for concurrent mutation.
type Array[T Number] struct {
	values        []T
	numComponents int
	name          string
}

// New creates an empty array with the given number of components per tuple.
// Values below 1 are treated as 1.
func New[T Number](numComponents int) *Array[T] {
	if numComponents < 1 {
		numComponents = 1
	}
	return &Array[T]{numComponents: numComponents}
}

// FromSlice wraps values as a single-component array without copying.
func FromSlice[T Number](values []T) *Array[T] {
	return &Array[T]{values: values, numComponents: 1}
}

// FromTuples wraps values as an array with numComponents values per tuple without copying.
func FromTuples[T Number](values []T, numComponents int) *Array[T] {
	a := New[T](numComponents)
	a.values = values
	return a
}

// DataType implements DataArray.
func (a *Array[T]) DataType() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return Unknown
}

// NumberOfComponents implements DataArray.
func (a *Array[T]) NumberOfComponents() int { return a.numComponents }

// NumberOfTuples implements DataArray.
func (a *Array[T]) NumberOfTuples() int { return len(a.values) / a.numComponents }

// NumberOfValues implements DataArray.
func (a *Array[T]) NumberOfValues() int { return len(a.values) }

// MemorySize implements DataArray.
func (a *Array[T]) MemorySize() int64 {
	var zero T
	return int64(cap(a.values)) * int64(unsafe.Sizeof(zero))
}

// Name returns the array name.
func (a *Array[T]) Name() string { return a.name }

// SetName sets the array name.
func (a *Array[T]) SetName(name string) { a.name = name }

// Values returns the live backing slice.
// The slice aliases the array and is invalidated by any call that may reallocate.
func (a *Array[T]) Values() []T { return a.values }

// Len returns the number of values.
func (a *Array[T]) Len() int { return len(a.values) }

// Cap returns the number of values that fit without reallocation.
func (a *Array[T]) Cap() int { return cap(a.values) }

// At returns the i-th value.
func (a *Array[T]) At(i int) T { return a.values[i] }

// Set stores v at index i.
func (a *Array[T]) Set(i int, v T) { a.values[i] = v }

// Last returns the final value. It panics on an empty array.
func (a *Array[T]) Last() T { return a.values[len(a.values)-1] }

// Append appends values.
func (a *Array[T]) Append(v ...T) { a.values = append(a.values, v...) }

// Reserve makes room for at least n values without changing the length.
func (a *Array[T]) Reserve(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if n <= cap(a.values) {
		return nil
	}
	grown := make([]T, len(a.values), n)
	copy(grown, a.values)
	a.values = grown
	return nil
}

// Resize sets the length to n values, zero-filling any new values.
func (a *Array[T]) Resize(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if n <= cap(a.values) {
		old := len(a.values)
		a.values = a.values[:n]
		if n > old {
			clear(a.values[old:])
		}
		return nil
	}
	grown := make([]T, n)
	copy(grown, a.values)
	a.values = grown
	return nil
}

// Reset sets the length to zero and keeps the capacity.
func (a *Array[T]) Reset() { a.values = a.values[:0] }

// Initialize releases all storage.
func (a *Array[T]) Initialize() { a.values = nil }

// Squeeze trims capacity to length.
func (a *Array[T]) Squeeze() {
	if cap(a.values) == len(a.values) {
		return
	}
	trimmed := make([]T, len(a.values))
	copy(trimmed, a.values)
	a.values = trimmed
}

// Clone returns a deep copy.
func (a *Array[T]) Clone() *Array[T] {
	values := make([]T, len(a.values))
	copy(values, a.values)
	return &Array[T]{values: values, numComponents: a.numComponents, name: a.name}
}

// ValueRange returns the smallest and largest value. ok is false for an empty array.
func (a *Array[T]) ValueRange() (lo, hi T, ok bool) {
	if len(a.values) == 0 {
		return lo, hi, false
	}
	lo, hi = a.values[0], a.values[0]
	for _, v := range a.values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
