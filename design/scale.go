package design

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ScaleXT rescales each column of x to [0, 1] by its own min and max, and
// returns the per-column minima and ranges so that related inputs (e.g. the
// experiments' coordinates) can be scaled identically with ScaleXTWith.
// Columns with zero range pass through unchanged.
func ScaleXT(x mat.Matrix) (scaled *mat.Dense, min, rng []float64) {
	r, c := x.Dims()
	min = make([]float64, c)
	rng = make([]float64, c)
	for j := 0; j < c; j++ {
		lo, hi := x.At(0, j), x.At(0, j)
		for i := 1; i < r; i++ {
			v := x.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		min[j], rng[j] = lo, hi-lo
	}
	scaled, _ = ScaleXTWith(x, min, rng)
	return scaled, min, rng
}

// ScaleXTWith rescales x using previously computed column minima and ranges.
func ScaleXTWith(x mat.Matrix, min, rng []float64) (*mat.Dense, error) {
	r, c := x.Dims()
	if len(min) != c || len(rng) != c {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrDesignShape, c, len(min))
	}
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			if rng[j] == 0 {
				out.Set(i, j, x.At(i, j))
				continue
			}
			out.Set(i, j, (x.At(i, j)-min[j])/rng[j])
		}
	}
	return out, nil
}
