package cellgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidth_Convert(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		c := newMixed(t, Width32)
		offsets := append([]int32(nil), c.OffsetsArray32().Values()...)
		conn := append([]int32(nil), c.ConnectivityArray32().Values()...)

		require.NoError(t, c.ConvertTo64BitStorage())
		assert.True(t, c.IsStorage64Bit())
		assert.Equal(t, [][]ID{{0, 1, 2}, {3, 4}, {5, 6, 7, 8}}, cellsOf(c))

		require.True(t, c.CanConvertTo32BitStorage())
		require.NoError(t, c.ConvertTo32BitStorage())
		assert.Equal(t, offsets, c.OffsetsArray32().Values())
		assert.Equal(t, conn, c.ConnectivityArray32().Values())
	})

	t.Run("Lossy", func(t *testing.T) {
		c := New()
		c.InsertNextCell(0, 1<<40)
		before := append([]int64(nil), c.ConnectivityArray64().Values()...)

		assert.False(t, c.CanConvertTo32BitStorage())
		err := c.ConvertTo32BitStorage()
		assert.ErrorIs(t, err, ErrLossyConversion)
		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, Width64, convErr.From)
		assert.Equal(t, Width32, convErr.To)

		assert.True(t, c.IsStorage64Bit())
		assert.Equal(t, before, c.ConnectivityArray64().Values())
	})

	t.Run("Smallest", func(t *testing.T) {
		c := newMixed(t, Width64)
		require.NoError(t, c.ConvertToSmallestStorage())
		assert.Equal(t, Width32, c.Width())

		c.InsertNextCell(1 << 35)
		require.NoError(t, c.ConvertToSmallestStorage())
		assert.Equal(t, Width64, c.Width())
	})

	t.Run("Default", func(t *testing.T) {
		c := newMixed(t, Width32)
		require.NoError(t, c.ConvertTo64BitStorage())
		require.NoError(t, c.ConvertToDefaultStorage())
		assert.Equal(t, Width32, c.Width())
		assert.Equal(t, Width32, c.DefaultWidth())
		assert.True(t, c.CanConvertTo64BitStorage())
	})
}

func TestWidth_Use(t *testing.T) {
	c := newMixed(t, Width64)
	c.Use64BitStorage()
	assert.Equal(t, 3, c.NumberOfCells(), "same width keeps content")

	c.Use32BitStorage()
	assert.Equal(t, Width32, c.Width())
	assert.Equal(t, 0, c.NumberOfCells())
	assert.True(t, c.IsValid())

	c.InsertNextCell(1, 2)
	c.UseDefaultStorage()
	assert.Equal(t, Width64, c.Width())
	assert.Equal(t, 0, c.NumberOfCells())
}

func TestWidth_InvalidDefaultIgnored(t *testing.T) {
	c := New(WithDefaultWidth(Width(16)))
	assert.Equal(t, Width64, c.Width())
}
