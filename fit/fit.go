// Package fit estimates per-experiment basis loadings by solving the
// ridge-regularized normal equations for the combined discrepancy and
// simulator design.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tmcnulty/emucal/utils"
)

var (
	// ErrShapeMismatch indicates design matrices and observations with
	// inconsistent row counts.
	ErrShapeMismatch = errors.New("fit: design and observation dimensions do not match")

	// ErrIllConditioned indicates that the regularized normal equations are
	// not positive definite, or produced a non-finite solution.
	ErrIllConditioned = errors.New("fit: regularized normal equations are ill-conditioned")
)

// DefaultRidge is the fixed regularization added to the normal equations.
// The discrepancy columns can be collinear for sparsely sampled experiments,
// so the ridge is mandatory.
const DefaultRidge = 1e-5

// Result holds one experiment's fitted loadings.
type Result struct {
	VStar []float64     // discrepancy loadings, one per knot column
	UStar []float64     // simulator basis loadings, one per retained component
	Cov   *mat.SymDense // (XᵀX + εI)⁻¹ over the combined design
	Ridge float64
}

// Solve fits the combined design X = [D | K] against the centered and scaled
// observations y0:
//
//	(XᵀX + εI) β = Xᵀ y0
//
// and splits β into the discrepancy loadings (first columns of X) and the
// simulator loadings. A ridge <= 0 selects DefaultRidge.
func Solve(d, k mat.Matrix, y0 []float64, ridge float64) (*Result, error) {
	n, pv := d.Dims()
	nk, pu := k.Dims()
	if n != nk || n != len(y0) {
		return nil, fmt.Errorf("%w: D is %dx%d, K is %dx%d, y0 has %d", ErrShapeMismatch, n, pv, nk, pu, len(y0))
	}
	if ridge <= 0 {
		ridge = DefaultRidge
	}
	p := pv + pu
	x := utils.Hstack(d, k)

	// XᵀX + εI
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	eye := utils.Eye(p)
	eye.Scale(ridge, eye)
	xtx.Add(&xtx, eye)
	sym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			sym.SetSym(i, j, xtx.At(i, j))
		}
	}

	// Xᵀ y0
	var xty mat.VecDense
	xty.MulVec(x.T(), mat.NewVecDense(n, y0))

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("%w: Cholesky factorization failed", ErrIllConditioned)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllConditioned, err)
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllConditioned, err)
	}

	coef := make([]float64, p)
	for i := range coef {
		coef[i] = beta.AtVec(i)
	}
	if floats.HasNaN(coef) || math.IsInf(floats.Norm(coef, 2), 0) {
		return nil, fmt.Errorf("%w: non-finite coefficients", ErrIllConditioned)
	}
	return &Result{
		VStar: coef[:pv],
		UStar: coef[pv:],
		Cov:   &cov,
		Ridge: ridge,
	}, nil
}

// Reconstruct evaluates the fitted model D vstar + K ustar at the design
// rows used for the fit.
func (r *Result) Reconstruct(d, k mat.Matrix) []float64 {
	n, pv := d.Dims()
	_, pu := k.Dims()
	beta := utils.ConcatVecs(pv+pu,
		mat.NewVecDense(pv, r.VStar),
		mat.NewVecDense(pu, r.UStar))
	var out mat.VecDense
	out.MulVec(utils.Hstack(d, k), beta)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = out.AtVec(i)
	}
	return vals
}
