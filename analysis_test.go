package cellgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxCellSize_ParallelMatchesSerial(t *testing.T) {
	const numCells = 1_000_000
	for _, w := range []Width{Width32, Width64} {
		t.Run(w.String(), func(t *testing.T) {
			c := New(WithDefaultWidth(w), WithParallelism(8, 1024))
			require.NoError(t, c.AllocateEstimate(numCells, 4))

			serial := 0
			pts := make([]ID, 0, 16)
			for i := range numCells {
				n := (i*7919)%13 + 1
				pts = pts[:0]
				for j := range n {
					pts = append(pts, ID(i+j))
				}
				c.InsertNextCell(pts...)
				serial = max(serial, n)
			}

			got, err := c.MaxCellSizeContext(context.Background())
			require.NoError(t, err)
			assert.Equal(t, serial, got)
			assert.Equal(t, serial, c.MaxCellSize())
		})
	}
}

func TestMaxCellSize_Canceled(t *testing.T) {
	c := New(WithParallelism(4, 10))
	for i := range 1000 {
		c.InsertNextCell(ID(i))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.MaxCellSizeContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistinctCellSizes(t *testing.T) {
	c := New(WithParallelism(4, 8))
	assert.Empty(t, c.DistinctCellSizes())

	for i := range 200 {
		c.InsertNextCell(make([]ID, i%5+2)...)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, c.DistinctCellSizes())
}

func TestUsedPoints(t *testing.T) {
	for _, w := range []Width{Width32, Width64} {
		t.Run(w.String(), func(t *testing.T) {
			c := New(WithDefaultWidth(w), WithParallelism(4, 16))
			for i := range 500 {
				c.InsertNextCell(ID(2*i), ID(2*i+2))
			}
			used := c.UsedPoints()
			assert.Equal(t, uint64(501), used.GetCardinality())
			assert.True(t, used.Contains(1000))
			assert.False(t, used.Contains(1))
		})
	}

	assert.True(t, New().UsedPoints().IsEmpty())
}

func TestBounds(t *testing.T) {
	coords := []float64{
		0, 0, 0,
		1, 2, 3,
		-1, 5, 0.5,
		100, 100, 100, // unreferenced
	}
	c := New(WithParallelism(2, 1))
	c.InsertNextCell(0, 1)
	c.InsertNextCell(2)

	b, err := c.Bounds(coords)
	require.NoError(t, err)
	assert.False(t, b.IsEmpty())
	assert.Equal(t, [3]float64{-1, 0, 0}, b.Min)
	assert.Equal(t, [3]float64{1, 5, 3}, b.Max)

	b, err = New().Bounds(coords)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())

	c.InsertNextCell(4)
	_, err = c.Bounds(coords)
	assert.ErrorIs(t, err, ErrPointIDOutOfRange)
}
