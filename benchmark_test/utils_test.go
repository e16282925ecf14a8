package benchmark_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/cellgo"
)

var sizes = []int{10_000, 1_000_000}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%dK", n/1_000)
	}
	return fmt.Sprint(n)
}

// mixedMesh builds numCells cells of 3 to 8 points over a point set about
// the size of the cell count, the shape of a typical unstructured mesh.
func mixedMesh(tb testing.TB, numCells int, opts ...cellgo.Option) *cellgo.CellArray {
	tb.Helper()
	rng := rand.New(rand.NewPCG(4711, 0))
	ca := cellgo.New(opts...)
	if err := ca.AllocateEstimate(numCells, 8); err != nil {
		tb.Fatal(err)
	}
	pts := make([]cellgo.ID, 8)
	for range numCells {
		n := 3 + rng.IntN(6)
		for j := range n {
			pts[j] = cellgo.ID(rng.IntN(numCells))
		}
		ca.InsertNextCell(pts[:n]...)
	}
	return ca
}
