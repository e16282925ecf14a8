package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyState(t *testing.T) {
	for _, w := range []Width{Width32, Width64} {
		t.Run(w.String(), func(t *testing.T) {
			s := New(w)
			assert.Equal(t, w, s.Width())
			assert.Equal(t, 0, s.Pair().NumberOfCells())
			assert.Equal(t, 1, s.Pair().NumberOfOffsets())
			assert.Equal(t, 0, s.Pair().NumberOfConnectivityIDs())
		})
	}
}

func TestNew_InvalidWidthPanics(t *testing.T) {
	assert.Panics(t, func() { New(Width(16)) })
}

func TestStorage_Use(t *testing.T) {
	s := New(Width64)
	wide := s.Wide()
	require.NotNil(t, wide)
	wide.Offsets.Append(2)
	wide.Connectivity.Append(4, 5)

	s.Use(Width64)
	assert.Same(t, wide, s.Wide(), "same width must be a no-op")

	s.Use(Width32)
	assert.Nil(t, s.Wide())
	require.NotNil(t, s.Narrow())
	assert.Equal(t, 0, s.Pair().NumberOfCells(), "switching width resets content")
}

func TestStorage_ConvertRoundTrip(t *testing.T) {
	s := New(Width32)
	narrow := s.Narrow()
	narrow.Offsets.Append(3, 5)
	narrow.Connectivity.Append(0, 1, 2, 3, 4)
	want := append([]int32(nil), narrow.Connectivity.Values()...)

	s.ConvertToWide()
	require.True(t, s.Is64Bit())
	assert.Equal(t, []int64{0, 3, 5}, s.Wide().Offsets.Values())

	require.NoError(t, s.ConvertToNarrow())
	require.False(t, s.Is64Bit())
	assert.Equal(t, want, s.Narrow().Connectivity.Values())
	assert.Equal(t, []int32{0, 3, 5}, s.Narrow().Offsets.Values())
}

func TestStorage_ConvertToNarrowLossy(t *testing.T) {
	s := New(Width64)
	wide := s.Wide()
	wide.Offsets.Append(1)
	wide.Connectivity.Append(1 << 40)

	assert.False(t, s.CanConvertToNarrow())
	assert.ErrorIs(t, s.ConvertToNarrow(), ErrLossyConversion)
	assert.Same(t, wide, s.Wide(), "failed conversion must leave storage unchanged")
}

func TestArrays_ResetSqueeze(t *testing.T) {
	a := NewArrays[int64]()
	a.Offsets.Append(2)
	a.Connectivity.Append(7, 8)
	a.Reset()
	assert.Equal(t, []int64{0}, a.Offsets.Values())
	assert.Equal(t, 0, a.Connectivity.Len())

	a.Squeeze()
	assert.Equal(t, int64(8), a.MemorySize())
}
