// Package interp provides bilinear interpolation of values on a rectilinear
// 2-D grid, evaluated at scattered query points. Queries outside the grid's
// covered range are an error: extrapolation is never performed.
package interp

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrGridShape indicates a value matrix inconsistent with the coordinate
	// slices, or coordinate slices shorter than two points.
	ErrGridShape = errors.New("interp: grid coordinates do not match value matrix")

	// ErrNotAscending indicates grid coordinates that are not strictly
	// increasing.
	ErrNotAscending = errors.New("interp: grid coordinates must be strictly increasing")

	// ErrOutOfRange indicates a query point outside the grid's covered range.
	ErrOutOfRange = errors.New("interp: query point outside grid range")

	// ErrQueryShape indicates query coordinate slices of different lengths.
	ErrQueryShape = errors.New("interp: query coordinate slices differ in length")
)

// Grid is a rectilinear grid with value z[i,j] at (x[i], y[j]).
type Grid struct {
	x, y []float64
	z    *mat.Dense
}

// NewGrid validates the coordinates against the value matrix. The value
// matrix is referenced, not copied.
func NewGrid(x, y []float64, z *mat.Dense) (*Grid, error) {
	r, c := z.Dims()
	if len(x) != r || len(y) != c || len(x) < 2 || len(y) < 2 {
		return nil, fmt.Errorf("%w: %d x %d coordinates, %d x %d values", ErrGridShape, len(x), len(y), r, c)
	}
	for _, g := range [][]float64{x, y} {
		for i := 1; i < len(g); i++ {
			if g[i] <= g[i-1] {
				return nil, fmt.Errorf("%w: %g after %g", ErrNotAscending, g[i], g[i-1])
			}
		}
	}
	return &Grid{x: x, y: y, z: z}, nil
}

// cell locates the interval containing v and the fractional position within
// it. Grid nodes resolve exactly (fraction 0 or 1).
func cell(grid []float64, v float64) (int, float64, error) {
	n := len(grid)
	if v < grid[0] || v > grid[n-1] {
		return 0, 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, v, grid[0], grid[n-1])
	}
	i := sort.SearchFloat64s(grid, v) // grid[i-1] < v <= grid[i]
	if i == 0 {
		return 0, 0, nil // v == grid[0]
	}
	i--
	return i, (v - grid[i]) / (grid[i+1] - grid[i]), nil
}

// At evaluates the bilinear interpolant at (x, y).
func (g *Grid) At(x, y float64) (float64, error) {
	i, tx, err := cell(g.x, x)
	if err != nil {
		return 0, err
	}
	j, ty, err := cell(g.y, y)
	if err != nil {
		return 0, err
	}
	return (1-tx)*(1-ty)*g.z.At(i, j) +
		tx*(1-ty)*g.z.At(i+1, j) +
		(1-tx)*ty*g.z.At(i, j+1) +
		tx*ty*g.z.At(i+1, j+1), nil
}

// AtAll evaluates the interpolant at each (xs[k], ys[k]) pair.
func (g *Grid) AtAll(xs, ys []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrQueryShape, len(xs), len(ys))
	}
	out := make([]float64, len(xs))
	for k := range xs {
		v, err := g.At(xs[k], ys[k])
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
