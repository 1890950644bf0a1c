package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tmcnulty/emucal/interp"
)

func testGrid(t *testing.T) *interp.Grid {
	t.Helper()
	x := []float64{0, 1, 3}
	y := []float64{0, 2}
	z := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	g, err := interp.NewGrid(x, y, z)
	require.NoError(t, err)
	return g
}

// TestNewGrid_Errors covers shape and ordering validation.
func TestNewGrid_Errors(t *testing.T) {
	z := mat.NewDense(2, 2, nil)

	_, err := interp.NewGrid([]float64{0, 1, 2}, []float64{0, 1}, z)
	assert.ErrorIs(t, err, interp.ErrGridShape)

	_, err = interp.NewGrid([]float64{0}, []float64{0, 1}, z)
	assert.ErrorIs(t, err, interp.ErrGridShape)

	_, err = interp.NewGrid([]float64{1, 1}, []float64{0, 1}, z)
	assert.ErrorIs(t, err, interp.ErrNotAscending)
}

// TestAt_ExactAtNodes: interpolating at the grid's own coordinates returns
// the stored values exactly.
func TestAt_ExactAtNodes(t *testing.T) {
	g := testGrid(t)
	x := []float64{0, 1, 3}
	y := []float64{0, 2}
	want := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for i, xv := range x {
		for j, yv := range y {
			v, err := g.At(xv, yv)
			require.NoError(t, err)
			assert.InDelta(t, want[i][j], v, 1e-14, "node (%g, %g)", xv, yv)
		}
	}
}

// TestAt_Bilinear checks interior values against the closed form.
func TestAt_Bilinear(t *testing.T) {
	g := testGrid(t)

	// Center of the first cell: mean of its four corners.
	v, err := g.At(0.5, 1)
	require.NoError(t, err)
	assert.InDelta(t, (1+2+3+4)/4.0, v, 1e-14)

	// On an edge between two nodes.
	v, err = g.At(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-14) // halfway between 3 and 5
}

// TestAt_OutOfRange: queries outside the hull are an error, not an
// extrapolation.
func TestAt_OutOfRange(t *testing.T) {
	g := testGrid(t)

	_, err := g.At(-0.1, 1)
	assert.ErrorIs(t, err, interp.ErrOutOfRange)

	_, err = g.At(1, 2.5)
	assert.ErrorIs(t, err, interp.ErrOutOfRange)
}

// TestAtAll covers vectorized evaluation and error reporting with the
// offending point index.
func TestAtAll(t *testing.T) {
	g := testGrid(t)

	vs, err := g.AtAll([]float64{0, 3}, []float64{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 6}, vs)

	_, err = g.AtAll([]float64{0, 5}, []float64{0, 0})
	assert.ErrorIs(t, err, interp.ErrOutOfRange)
	assert.Contains(t, err.Error(), "point 1")

	_, err = g.AtAll([]float64{0}, []float64{0, 0})
	assert.ErrorIs(t, err, interp.ErrQueryShape)
}
