// Package design builds the simulator ensemble: a space-filling design over
// normalized coordinates is mapped onto multiplicative perturbations of a
// base parameter vector, and the physical model is evaluated at every row.
package design

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDesignShape indicates a design matrix whose column count does not
	// match the number of perturbations.
	ErrDesignShape = errors.New("design: column count does not match perturbation count")

	// ErrDesignRange indicates a design coordinate outside [0, 1].
	ErrDesignRange = errors.New("design: coordinates must lie in [0, 1]")

	// ErrModelOutput indicates a model response whose length does not match
	// the time grid.
	ErrModelOutput = errors.New("design: model output length does not match time grid")
)

// Model evaluates the physical simulator over a time grid for one parameter
// vector. It must be a pure function of its inputs.
type Model func(time, params []float64) []float64

// Perturbation maps one design column onto a multiplicative range for one
// entry of the base parameter vector. A design coordinate u in [0, 1] scales
// the parameter by Lo + (Hi-Lo)*u.
type Perturbation struct {
	Param int
	Lo    float64
	Hi    float64
}

// DefaultPerturbations returns the three-column layout used for the
// cylindrical implosion ensemble: a tight range on the leading (radius
// scale) parameter and wider ranges on the third and fifth parameters.
func DefaultPerturbations() []Perturbation {
	return []Perturbation{
		{Param: 0, Lo: 0.90, Hi: 1.10},
		{Param: 2, Lo: 0.65, Hi: 1.35},
		{Param: 4, Lo: 0.75, Hi: 1.25},
	}
}

// Ensemble holds the simulator runs for one design.
//
// Y has one column per run, in design-row order. Each column is the run's
// (time x angle) output image flattened time-fastest: row iphi*len(Time)+it
// holds the value at (Time[it], Phi[iphi]).
type Ensemble struct {
	Y      *mat.Dense // neta x m output matrix
	Params *mat.Dense // m x len(base) full parameter matrix
	Time   []float64
	Phi    []float64
}

// Generate evaluates the model at every design row and assembles the output
// matrix. The model's radius trace is scaled by the run's leading parameter
// and replicated across the angle grid (the simulator is axisymmetric).
func Generate(base []float64, dsn mat.Matrix, perts []Perturbation, time, phi []float64, model Model) (*Ensemble, error) {
	m, p := dsn.Dims()
	if p != len(perts) {
		return nil, fmt.Errorf("%w: got %d columns, want %d", ErrDesignShape, p, len(perts))
	}
	ntime, nphi := len(time), len(phi)
	neta := ntime * nphi

	params := mat.NewDense(m, len(base), nil)
	y := mat.NewDense(neta, m, nil)
	row := make([]float64, len(base))
	for i := 0; i < m; i++ {
		copy(row, base)
		for j, pt := range perts {
			u := dsn.At(i, j)
			if u < 0 || u > 1 {
				return nil, fmt.Errorf("%w: value %g at row %d, column %d", ErrDesignRange, u, i, j)
			}
			row[pt.Param] = base[pt.Param] * (pt.Lo + (pt.Hi-pt.Lo)*u)
		}
		params.SetRow(i, row)

		r := model(time, row)
		if len(r) != ntime {
			return nil, fmt.Errorf("%w: got %d values, want %d (row %d)", ErrModelOutput, len(r), ntime, i)
		}
		for iphi := 0; iphi < nphi; iphi++ {
			for it := 0; it < ntime; it++ {
				y.Set(iphi*ntime+it, i, row[0]*r[it])
			}
		}
	}
	return &Ensemble{Y: y, Params: params, Time: time, Phi: phi}, nil
}
