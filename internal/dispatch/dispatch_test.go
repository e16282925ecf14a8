package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/cellgo/internal/storage"
)

func build[T storage.Index](cells ...[]T) *storage.Arrays[T] {
	a := storage.NewArrays[T]()
	for _, c := range cells {
		a.Connectivity.Append(c...)
		a.Offsets.Append(T(a.Connectivity.Len()))
	}
	return a
}

func width[T storage.Index](a *storage.Arrays[T]) string { return a.Width().String() }

func TestVisit(t *testing.T) {
	assert.Equal(t, "32-bit", Visit(storage.New(storage.Width32).Pair(), width[int32], width[int64]))
	assert.Equal(t, "64-bit", Visit(storage.New(storage.Width64).Pair(), width[int32], width[int64]))
}

func sizeOf[T storage.Index](a *storage.Arrays[T], id int64) int { return CellSize(a, id) }

func TestApply(t *testing.T) {
	a := build([]int64{0, 1, 2}, []int64{3, 4})
	assert.Equal(t, 2, Apply(storage.Pair(a), sizeOf[int32], sizeOf[int64], int64(1)))
	assert.Equal(t, []int64{3, 4}, CellRange(a, 1))
}

func tag[D, S storage.Index](dst *storage.Arrays[D], src *storage.Arrays[S], _ struct{}) string {
	return dst.Width().String() + "<-" + src.Width().String()
}

func TestApply2(t *testing.T) {
	ops := Ops2[struct{}, string]{
		NN: tag[int32, int32],
		NW: tag[int32, int64],
		WN: tag[int64, int32],
		WW: tag[int64, int64],
	}
	n := storage.NewArrays[int32]()
	w := storage.NewArrays[int64]()
	assert.Equal(t, "32-bit<-64-bit", Apply2(storage.Pair(n), storage.Pair(w), ops, struct{}{}))
	assert.Equal(t, "64-bit<-32-bit", Apply2(storage.Pair(w), storage.Pair(n), ops, struct{}{}))
}

func TestLocationToCell(t *testing.T) {
	// Legacy layout: [3,0,1,2, 2,3,4, 0, 1,5] -> cell starts at 0, 4, 7, 8.
	a := build([]int32{0, 1, 2}, []int32{3, 4}, []int32{}, []int32{5})
	offsets := a.Offsets.Values()

	for id, loc := range []int64{0, 4, 7, 8} {
		assert.Equal(t, loc, CellToLocation(offsets, int64(id)))
		assert.Equal(t, int64(id), LocationToCell(offsets, loc))
	}
	for _, loc := range []int64{-1, 1, 3, 5, 9, 10, 100} {
		assert.Equal(t, int64(-1), LocationToCell(offsets, loc), "loc %d", loc)
	}
	assert.Equal(t, int64(-1), LocationToCell(storage.NewArrays[int32]().Offsets.Values(), 0))
}
