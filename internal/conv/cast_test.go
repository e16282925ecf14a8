package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitsInt32(t *testing.T) {
	for _, tc := range []struct {
		v    int64
		want bool
	}{
		{0, true},
		{math.MaxInt32, true},
		{math.MinInt32, true},
		{math.MaxInt32 + 1, false},
		{math.MinInt32 - 1, false},
		{1 << 40, false},
	} {
		assert.Equal(t, tc.want, FitsInt32(tc.v), "%d", tc.v)
	}
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}
