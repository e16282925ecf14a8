package dispatch

import (
	"fmt"
	"sort"

	"github.com/hupe1980/cellgo/internal/storage"
)

type (
	narrow = storage.Arrays[int32]
	wide   = storage.Arrays[int64]
)

// Visit calls the instantiation of an operation that matches the width of p.
//
// Callers pass the two instantiations of one generic function:
//
//	n := dispatch.Visit(p, maxCellSize[int32], maxCellSize[int64])
func Visit[R any](p storage.Pair, onNarrow func(*narrow) R, onWide func(*wide) R) R {
	switch a := p.(type) {
	case *narrow:
		return onNarrow(a)
	case *wide:
		return onWide(a)
	default:
		panic(fmt.Sprintf("dispatch: unexpected pair %T", p))
	}
}

// Apply is Visit with one extra argument forwarded to the operation.
// Several arguments are bundled into a struct by the caller.
func Apply[A, R any](p storage.Pair, onNarrow func(*narrow, A) R, onWide func(*wide, A) R, arg A) R {
	switch a := p.(type) {
	case *narrow:
		return onNarrow(a, arg)
	case *wide:
		return onWide(a, arg)
	default:
		panic(fmt.Sprintf("dispatch: unexpected pair %T", p))
	}
}

// Ops2 holds the four instantiations of a two-pair operation, indexed by
// (destination width, source width).
type Ops2[A, R any] struct {
	NN func(dst *narrow, src *narrow, arg A) R
	NW func(dst *narrow, src *wide, arg A) R
	WN func(dst *wide, src *narrow, arg A) R
	WW func(dst *wide, src *wide, arg A) R
}

// Apply2 resolves both widths and calls the matching instantiation.
func Apply2[A, R any](dst, src storage.Pair, ops Ops2[A, R], arg A) R {
	switch d := dst.(type) {
	case *narrow:
		switch s := src.(type) {
		case *narrow:
			return ops.NN(d, s, arg)
		case *wide:
			return ops.NW(d, s, arg)
		}
	case *wide:
		switch s := src.(type) {
		case *narrow:
			return ops.WN(d, s, arg)
		case *wide:
			return ops.WW(d, s, arg)
		}
	}
	panic(fmt.Sprintf("dispatch: unexpected pairs %T, %T", dst, src))
}

// CellRange returns the live connectivity sub-slice of cell id.
func CellRange[T storage.Index](a *storage.Arrays[T], id int64) []T {
	offsets := a.Offsets.Values()
	return a.Connectivity.Values()[offsets[id]:offsets[id+1]]
}

// CellSize returns the number of points of cell id.
func CellSize[T storage.Index](a *storage.Arrays[T], id int64) int {
	offsets := a.Offsets.Values()
	return int(offsets[id+1] - offsets[id])
}

// CellToLocation maps a cell id to its position in the legacy [n, ids...] layout.
func CellToLocation[T storage.Index](offsets []T, id int64) int64 {
	return int64(offsets[id]) + id
}

// LocationToCell finds the cell whose legacy record starts at loc.
//
// Legacy locations offsets[i]+i grow strictly with i, so a binary search over the
// offsets recovers the cell id. It returns -1 when loc is not the start of a cell.
func LocationToCell[T storage.Index](offsets []T, loc int64) int64 {
	numCells := len(offsets) - 1
	if loc < 0 || numCells <= 0 {
		return -1
	}
	i := sort.Search(numCells, func(i int) bool {
		return int64(offsets[i])+int64(i) >= loc
	})
	if i < numCells && int64(offsets[i])+int64(i) == loc {
		return int64(i)
	}
	return -1
}
